package repository

import "time"

// ItemListFilter 查询菜品列表的过滤条件
type ItemListFilter struct {
	Page          int
	PageSize      int
	ShopID        uint
	CategoryID    uint
	Search        string
	OnlyAvailable bool
	WithOptions   bool
}

// ShopListFilter 查询店铺列表的过滤条件
type ShopListFilter struct {
	Page       int
	PageSize   int
	OwnerID    uint
	Search     string
	OnlyActive bool
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	ShopID      uint
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	WithItems   bool
}

// PromotionListFilter 查询促销列表的过滤条件
type PromotionListFilter struct {
	Page       int
	PageSize   int
	ShopID     uint
	Search     string
	OnlyActive bool
}

// PaymentListFilter 查询支付列表的过滤条件
type PaymentListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	OrderID     uint
	Gateway     string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}
