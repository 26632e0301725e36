package service

import (
	"github.com/farm-ledger/internal/models"

	"gorm.io/gorm"
)

// VerifyLedgerSchema 校验台账表结构，缺失时返回 StorageError（表结构变更由 migrate 命令负责）
func VerifyLedgerSchema(db *gorm.DB) error {
	if err := models.VerifySchema(db); err != nil {
		return newStorageError("verify schema", err)
	}
	return nil
}
