package repository

import (
	"edupath_backend/internal/model"
	"errors"

	"gorm.io/gorm"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// Find 不存在时返回 (nil, nil)
func (r *ProgressRepository) Find(studentID, chapterID string) (*model.ChapterProgress, error) {
	var p model.ChapterProgress
	err := r.DB.Where("student_id = ? AND chapter_id = ?", studentID, chapterID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProgressRepository) Create(p *model.ChapterProgress) error {
	return r.DB.Create(p).Error
}

func (r *ProgressRepository) Save(p *model.ChapterProgress) error {
	return r.DB.Save(p).Error
}

func (r *ProgressRepository) ListByStudent(studentID string) ([]model.ChapterProgress, error) {
	var ps []model.ChapterProgress
	err := r.DB.Where("student_id = ?", studentID).Order("updated_at desc").Find(&ps).Error
	return ps, err
}

func (r *ProgressRepository) ListByStudentAndPath(studentID, learningPathID string) ([]model.ChapterProgress, error) {
	var ps []model.ChapterProgress
	err := r.DB.Where("student_id = ? AND learning_path_id = ?", studentID, learningPathID).Find(&ps).Error
	return ps, err
}

// CountCompleted 统计给定章节集合中已完成的数量
func (r *ProgressRepository) CountCompleted(studentID string, chapterIDs []string) (int64, error) {
	if len(chapterIDs) == 0 {
		return 0, nil
	}
	var n int64
	err := r.DB.Model(&model.ChapterProgress{}).
		Where("student_id = ? AND chapter_id IN ? AND completed_at IS NOT NULL", studentID, chapterIDs).
		Count(&n).Error
	return n, err
}

// CountAny 统计给定章节集合中已有进度记录的数量（用于"已开始的模块保持可读"判定）
func (r *ProgressRepository) CountAny(studentID string, chapterIDs []string) (int64, error) {
	if len(chapterIDs) == 0 {
		return 0, nil
	}
	var n int64
	err := r.DB.Model(&model.ChapterProgress{}).
		Where("student_id = ? AND chapter_id IN ?", studentID, chapterIDs).
		Count(&n).Error
	return n, err
}
