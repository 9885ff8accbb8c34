package model

// LockReason 模块锁定原因的封闭枚举，前端按枚举值渲染不同文案
type LockReason string

const (
	LockSubscriptionExpired      LockReason = "subscription_expired"
	LockSubscriptionRequired     LockReason = "subscription_required"
	LockPreviousModuleIncomplete LockReason = "previous_module_incomplete"
)

// ModuleAccessState 按需计算的模块解锁状态，不落库
// swagger:model ModuleAccessState
type ModuleAccessState struct {
	ModuleIndex          int         `json:"moduleIndex"`
	HasAccess            bool        `json:"hasAccess"`
	IsLocked             bool        `json:"isLocked"`
	UnlockedModulesCount int         `json:"unlockedModulesCount"`
	Reason               *LockReason `json:"reason"`
}
