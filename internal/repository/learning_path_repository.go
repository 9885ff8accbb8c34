package repository

import (
	"edupath_backend/internal/model"

	"gorm.io/gorm"
)

type LearningPathRepository struct {
	DB *gorm.DB
}

func NewLearningPathRepository(db *gorm.DB) *LearningPathRepository {
	return &LearningPathRepository{DB: db}
}

func (r *LearningPathRepository) CreatePath(path *model.LearningPath) error {
	return r.DB.Create(path).Error
}

// FindPathByID 整树加载，模块/子模块/章节按各自 order 排序
func (r *LearningPathRepository) FindPathByID(id string) (*model.LearningPath, error) {
	var p model.LearningPath
	err := r.DB.
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("module_order asc")
		}).
		Preload("Modules.Submodules", func(db *gorm.DB) *gorm.DB {
			return db.Order("submodule_order asc")
		}).
		Preload("Modules.Submodules.Chapters", func(db *gorm.DB) *gorm.DB {
			return db.Order("chapter_order asc")
		}).
		Where("id = ?", id).First(&p).Error
	return &p, err
}

func (r *LearningPathRepository) ListPaths(page, limit int) ([]model.LearningPath, int64, error) {
	var ps []model.LearningPath
	var total int64
	query := r.DB.Model(&model.LearningPath{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&ps).Error
	return ps, total, err
}

func (r *LearningPathRepository) UpdatePath(path *model.LearningPath) error {
	return r.DB.Save(path).Error
}

func (r *LearningPathRepository) DeletePath(id string) error {
	return r.DB.Where("id = ?", id).Delete(&model.LearningPath{}).Error
}

func (r *LearningPathRepository) CreateModule(m *model.Module) error {
	return r.DB.Create(m).Error
}

func (r *LearningPathRepository) CreateSubmodule(sm *model.Submodule) error {
	return r.DB.Create(sm).Error
}

func (r *LearningPathRepository) CreateChapter(ch *model.Chapter) error {
	return r.DB.Create(ch).Error
}

func (r *LearningPathRepository) FindChapterByID(id string) (*model.Chapter, error) {
	var ch model.Chapter
	err := r.DB.Where("id = ?", id).First(&ch).Error
	return &ch, err
}

func (r *LearningPathRepository) UpdateChapter(ch *model.Chapter) error {
	return r.DB.Save(ch).Error
}

// ChapterIDsByModule 返回模块下所有章节 ID（跨子模块）
func (r *LearningPathRepository) ChapterIDsByModule(moduleID uint) ([]string, error) {
	var ids []string
	err := r.DB.Model(&model.Chapter{}).
		Joins("JOIN submodules ON submodules.id = chapters.submodule_id").
		Where("submodules.module_id = ? AND submodules.deleted_at IS NULL", moduleID).
		Pluck("chapters.id", &ids).Error
	return ids, err
}
