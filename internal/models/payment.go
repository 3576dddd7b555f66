package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment 支付记录
type Payment struct {
	ID          uint           `gorm:"primarykey" json:"id"`                // 主键
	UserID      *uint          `gorm:"index" json:"user_id"`                // 用户ID
	OrderID     *uint          `gorm:"index" json:"order_id"`               // 订单ID
	Gateway     string         `gorm:"index;not null" json:"gateway"`       // 支付网关（payway/stripe）
	GatewayRef  string         `gorm:"index" json:"gateway_ref"`            // 网关流水号（tran_id / payment_intent / session）
	Status      string         `gorm:"index;not null" json:"status"`        // 支付状态
	AmountCents *Money         `json:"amount_cents"`                        // 支付金额（分）
	Currency    string         `json:"currency"`                            // 币种
	RawResponse JSON           `gorm:"type:json" json:"raw_response"`       // 各阶段网关原始数据
	PaidAt      *time.Time     `gorm:"index" json:"paid_at"`                // 支付时间
	ExpiredAt   *time.Time     `gorm:"index" json:"expired_at"`             // 过期时间
	CallbackAt  *time.Time     `gorm:"index" json:"callback_at"`            // 回调时间
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`             // 创建时间
	UpdatedAt   time.Time      `json:"updated_at"`                          // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                      // 软删除时间
}

// TableName 指定表名
func (Payment) TableName() string {
	return "payments"
}

// IsTerminal 是否处于终态
func (p Payment) IsTerminal() bool {
	return p.Status == "paid" || p.Status == "failed"
}
