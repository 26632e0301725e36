package admin

import "github.com/farm-ledger/internal/provider"

// Handler 后台 API 与表单处理器
type Handler struct {
	*provider.Container
}

func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
