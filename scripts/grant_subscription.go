// 手动开通订阅脚本
//
// 正常流程里订阅由支付回调写入（POST /api/webhook/payments）。
// 此脚本用于运营手动开通，例如内测账号或支付渠道异常时的补单。
// 订阅解析结果有 60 秒缓存，写入后最迟一分钟内生效。
//
// 用法: go run scripts/grant_subscription.go -student S12345 -path <pathId> -days 30
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"edupath_backend/internal/config"
	"edupath_backend/internal/model"
	"edupath_backend/internal/repository"
	"edupath_backend/pkg/database"
	"edupath_backend/pkg/logger"

	"gopkg.in/yaml.v3"
)

func main() {
	student := flag.String("student", "", "学生标识 (studentUniqueId)")
	path := flag.String("path", "", "学习路径ID")
	plan := flag.String("plan", "standard", "套餐类型")
	days := flag.Int("days", 30, "有效天数")
	chatLimit := flag.Int("chat-limit", 50, "每日对话额度")
	mcqLimit := flag.Int("mcq-limit", 100, "每月出题额度")
	flag.Parse()

	if *student == "" || *path == "" {
		log.Fatal("必须指定 -student 和 -path")
	}

	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	logger.InitLogger(&cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	now := time.Now().UTC()
	sub := &model.Subscription{
		StudentID:       *student,
		LearningPathID:  *path,
		PlanType:        *plan,
		DailyChatLimit:  *chatLimit,
		MonthlyMcqLimit: *mcqLimit,
		ValidFrom:       now,
		ValidUntil:      now.AddDate(0, 0, *days),
	}

	repo := repository.NewSubscriptionRepository(db)
	if err := repo.Create(sub); err != nil {
		log.Fatalf("写入订阅失败: %v", err)
	}

	log.Printf("已开通 %s / %s，套餐 %s，有效期至 %s", *student, *path, *plan, sub.ValidUntil.Format(time.RFC3339))
}
