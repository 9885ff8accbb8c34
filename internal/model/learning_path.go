package model

// 学习路径结构：Path → Module → Submodule → Chapter
// 由内容编辑端写入，引擎侧只读；被进度记录引用后结构不再变更

// swagger:model LearningPath
type LearningPath struct {
	UUIDBase
	Title       string   `gorm:"size:255;not null" json:"title"`
	Description string   `gorm:"type:text" json:"description"`
	CreatorID   uint     `gorm:"index;type:bigint unsigned" json:"creatorId"`
	Published   bool     `gorm:"default:false" json:"published"`
	Modules     []Module `gorm:"foreignKey:LearningPathID;constraint:OnDelete:CASCADE" json:"modules,omitempty"`
}

func (LearningPath) TableName() string {
	return "learning_paths"
}

// swagger:model Module
type Module struct {
	BaseModel
	LearningPathID string      `gorm:"index;type:varchar(36);not null" json:"learningPathId"`
	Title          string      `gorm:"size:255;not null" json:"title"`
	Order          int         `gorm:"column:module_order;default:0" json:"order"`
	Submodules     []Submodule `gorm:"foreignKey:ModuleID;constraint:OnDelete:CASCADE" json:"submodules,omitempty"`
}

func (Module) TableName() string {
	return "modules"
}

// swagger:model Submodule
type Submodule struct {
	BaseModel
	ModuleID uint      `gorm:"index;type:bigint unsigned;not null" json:"moduleId"`
	Title    string    `gorm:"size:255;not null" json:"title"`
	Order    int       `gorm:"column:submodule_order;default:0" json:"order"`
	Chapters []Chapter `gorm:"foreignKey:SubmoduleID;constraint:OnDelete:CASCADE" json:"chapters,omitempty"`
}

func (Submodule) TableName() string {
	return "submodules"
}

// Chapter 进度与计量的叶子单元
// swagger:model Chapter
type Chapter struct {
	UUIDBase
	SubmoduleID    uint   `gorm:"index;type:bigint unsigned;not null" json:"submoduleId"`
	LearningPathID string `gorm:"index;type:varchar(36);not null" json:"learningPathId"`
	Title          string `gorm:"size:255;not null" json:"title"`
	Order          int    `gorm:"column:chapter_order;default:0" json:"order"`
	Content        string `gorm:"type:longtext" json:"content"`
	VideoURL       string `gorm:"size:512" json:"videoUrl"`
	// VideoDuration 上传时由 ffmpeg 探测回填，秒
	VideoDuration *int `json:"videoDuration,omitempty"`
}

func (Chapter) TableName() string {
	return "chapters"
}
