package repository

import "gorm.io/gorm"

// 列表查询统一分页上限：订单、支付流水等表数据量大，
// 不允许客户端用超大 page_size 扫全表。
const maxPageSize = 100

// applyPagination 应用分页参数，统一处理非法页码与单页上限。
// pageSize <= 0 视为调用方要求不分页（仅限内部查询）。
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if query == nil || pageSize <= 0 {
		return query
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	if page < 1 {
		page = 1
	}
	return query.Limit(pageSize).Offset((page - 1) * pageSize)
}
