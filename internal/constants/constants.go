package constants

// 采购单交付状态
const (
	DeliveryStatusPending   = "pending"
	DeliveryStatusShipped   = "shipped"
	DeliveryStatusDelayed   = "delayed"
	DeliveryStatusDelivered = "delivered"
	DeliveryStatusCancelled = "cancelled"
)

// DeliveryStatuses 全部交付状态（按展示顺序）
var DeliveryStatuses = []string{
	DeliveryStatusPending,
	DeliveryStatusShipped,
	DeliveryStatusDelayed,
	DeliveryStatusDelivered,
	DeliveryStatusCancelled,
}

// IsDeliveryStatus 判断是否为合法交付状态
func IsDeliveryStatus(status string) bool {
	for _, item := range DeliveryStatuses {
		if item == status {
			return true
		}
	}
	return false
}

// 到期分类标签
const (
	ExpiryNotApplicable = "not_applicable"
	ExpiryExpired       = "expired"
	ExpiringSoon        = "expiring_soon"
	ExpiryValid         = "valid"
)

// DefaultExpiringSoonDays 即将到期窗口（含边界）的默认天数
const DefaultExpiringSoonDays = 30

// 交付历史条数限制
const (
	DefaultDeliveryHistoryLimit = 10
	MaxDeliveryHistoryLimit     = 100
)

// 后台角色
const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

// 队列与任务名称
const (
	QueueDefault               = "default"
	QueueCritical              = "critical"
	TaskDeliveryStatusChanged  = "delivery:status_changed"
	TaskInventoryExpiryScan    = "inventory:expiry_scan"
	DeliveryHistoryCachePrefix = "delivery_history:supplier"
)

// ResponseFormatJSON 表单接口返回 JSON 而非重定向
const ResponseFormatJSON = "json"
