package service

import "github.com/khornSaokhouch/server/internal/constants"

// 订单状态流转表：pending -> paid -> preparing -> ready -> completed，
// pending/paid 可取消，终态不再流转。
var orderTransitions = map[string][]string{
	constants.OrderStatusPending: {
		constants.OrderStatusPaid,
		constants.OrderStatusCancelled,
	},
	constants.OrderStatusPaid: {
		constants.OrderStatusPreparing,
		constants.OrderStatusCancelled,
	},
	constants.OrderStatusPreparing: {
		constants.OrderStatusReady,
	},
	constants.OrderStatusReady: {
		constants.OrderStatusCompleted,
	},
}

// isOrderTransitionAllowed 判断订单状态流转是否合法
func isOrderTransitionAllowed(from, to string) bool {
	for _, allowed := range orderTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
