package service

import (
	"context"
	"edupath_backend/internal/model"
	"edupath_backend/internal/repository"
	"edupath_backend/internal/util"
	"edupath_backend/pkg/logger"
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ContentService 学习路径的内容编辑端：引擎对 LearningPath 只读，
// 写入都走这里（教师/管理员路由）
type ContentService struct {
	Repo    *repository.LearningPathRepository
	Storage *StorageService
}

func NewContentService(repo *repository.LearningPathRepository, storage *StorageService) *ContentService {
	return &ContentService{Repo: repo, Storage: storage}
}

type CreatePathRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

func (s *ContentService) CreatePath(creatorID uint, req CreatePathRequest) (*model.LearningPath, error) {
	path := &model.LearningPath{
		Title:       req.Title,
		Description: req.Description,
		CreatorID:   creatorID,
	}
	if err := s.Repo.CreatePath(path); err != nil {
		return nil, err
	}
	return path, nil
}

func (s *ContentService) GetPath(id string) (*model.LearningPath, error) {
	path, err := s.Repo.FindPathByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrLearningPathNotFound
	}
	if err != nil {
		return nil, err
	}
	return path, nil
}

func (s *ContentService) ListPaths(page, limit int) ([]model.LearningPath, int64, error) {
	return s.Repo.ListPaths(page, limit)
}

type CreateModuleRequest struct {
	LearningPathID string `json:"learningPathId" binding:"required"`
	Title          string `json:"title" binding:"required"`
	Order          int    `json:"order"`
}

func (s *ContentService) CreateModule(req CreateModuleRequest) (*model.Module, error) {
	if _, err := s.GetPath(req.LearningPathID); err != nil {
		return nil, err
	}
	m := &model.Module{
		LearningPathID: req.LearningPathID,
		Title:          req.Title,
		Order:          req.Order,
	}
	if err := s.Repo.CreateModule(m); err != nil {
		return nil, err
	}
	return m, nil
}

type CreateSubmoduleRequest struct {
	ModuleID uint   `json:"moduleId" binding:"required"`
	Title    string `json:"title" binding:"required"`
	Order    int    `json:"order"`
}

func (s *ContentService) CreateSubmodule(req CreateSubmoduleRequest) (*model.Submodule, error) {
	sm := &model.Submodule{
		ModuleID: req.ModuleID,
		Title:    req.Title,
		Order:    req.Order,
	}
	if err := s.Repo.CreateSubmodule(sm); err != nil {
		return nil, err
	}
	return sm, nil
}

type CreateChapterRequest struct {
	SubmoduleID    uint   `json:"submoduleId" binding:"required"`
	LearningPathID string `json:"learningPathId" binding:"required"`
	Title          string `json:"title" binding:"required"`
	Order          int    `json:"order"`
	Content        string `json:"content"`
}

func (s *ContentService) CreateChapter(req CreateChapterRequest) (*model.Chapter, error) {
	ch := &model.Chapter{
		SubmoduleID:    req.SubmoduleID,
		LearningPathID: req.LearningPathID,
		Title:          req.Title,
		Order:          req.Order,
		Content:        req.Content,
	}
	if err := s.Repo.CreateChapter(ch); err != nil {
		return nil, err
	}
	return ch, nil
}

// UploadChapterVideo 上传章节视频并用 ffmpeg 探测时长回填 Chapter.VideoDuration
func (s *ContentService) UploadChapterVideo(ctx context.Context, chapterID string, file *multipart.FileHeader) (*model.Chapter, error) {
	chapter, err := s.Repo.FindChapterByID(chapterID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrChapterNotFound
	}
	if err != nil {
		return nil, err
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	if _, err := util.ValidateMimeType(src, []string{util.MimeVideo, util.MimeOctetStream}); err != nil {
		return nil, err
	}
	if _, err := src.Seek(0, 0); err != nil {
		return nil, err
	}

	// 先落临时文件做 ffprobe，再交给存储后端
	tmp, err := os.CreateTemp("", "chapter-video-*"+filepath.Ext(file.Filename))
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := tmp.ReadFrom(src); err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("videos/%s%s", chapter.ID, filepath.Ext(file.Filename))
	url, err := s.Storage.UploadFile(ctx, filename, tmp.Name(), file.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	chapter.VideoURL = url
	if info, err := util.ProbeVideo(tmp.Name()); err == nil {
		duration := int(info.Duration)
		chapter.VideoDuration = &duration
	} else {
		logger.Log.Warn("video probe failed, duration left unset",
			zap.String("chapterId", chapter.ID), zap.Error(err))
	}

	if err := s.Repo.UpdateChapter(chapter); err != nil {
		return nil, err
	}
	return chapter, nil
}
