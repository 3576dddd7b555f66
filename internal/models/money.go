package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money 统一金额类型，按最小货币单位（分）整数存储
type Money int64

// ParseMoney 解析 "12.34" 形式的金额字符串为分
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	cents := d.Mul(decimal.NewFromInt(100))
	if !cents.IsInteger() {
		return 0, fmt.Errorf("amount %q has more than 2 decimal places", s)
	}
	return Money(cents.IntPart()), nil
}

// Cents 返回分值
func (m Money) Cents() int64 {
	return int64(m)
}

// String 返回 "12.34" 形式的金额字符串
func (m Money) String() string {
	return decimal.NewFromInt(int64(m)).Div(decimal.NewFromInt(100)).StringFixed(2)
}

// Percent 按百分比取值，小数部分四舍五入（half-up）
func (m Money) Percent(value int64) Money {
	if m <= 0 || value <= 0 {
		return 0
	}
	return Money((int64(m)*value + 50) / 100)
}

// ClampTo 将金额截断到上限
func (m Money) ClampTo(limit Money) Money {
	if m > limit {
		return limit
	}
	return m
}
