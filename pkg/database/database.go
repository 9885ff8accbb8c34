package database

import (
	"edupath_backend/internal/config"
	"edupath_backend/internal/model"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// 重复键等驱动错误翻译成 gorm 哨兵错误，配额计数器的并发插入依赖这个
		TranslateError: true,
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.User{},
		&model.LearningPath{},
		&model.Module{},
		&model.Submodule{},
		&model.Chapter{},
		&model.Subscription{},
		&model.UsageCounter{},
		&model.ChapterProgress{},
		&model.ChatMessage{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	seedDemoPath(db)

	return db, nil
}

// seedDemoPath 空库时插入一条演示路径，方便本地联调
func seedDemoPath(db *gorm.DB) {
	var count int64
	db.Model(&model.LearningPath{}).Count(&count)
	if count > 0 {
		return
	}

	path := &model.LearningPath{
		Title:       "Go 后端入门",
		Description: "从语法到并发的演示学习路径",
		Published:   true,
	}
	if err := db.Create(path).Error; err != nil {
		return
	}

	for i, moduleTitle := range []string{"语言基础", "并发编程"} {
		m := &model.Module{LearningPathID: path.ID, Title: moduleTitle, Order: i}
		if err := db.Create(m).Error; err != nil {
			continue
		}
		sm := &model.Submodule{ModuleID: m.ID, Title: moduleTitle + "·第一部分", Order: 0}
		if err := db.Create(sm).Error; err != nil {
			continue
		}
		for j, chapterTitle := range []string{"概念讲解", "动手练习"} {
			db.Create(&model.Chapter{
				SubmoduleID:    sm.ID,
				LearningPathID: path.ID,
				Title:          chapterTitle,
				Order:          j,
				Content:        moduleTitle + " " + chapterTitle + " 的章节内容",
			})
		}
	}
}
