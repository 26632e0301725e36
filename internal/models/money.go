package models

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/shopspring/decimal"
)

const (
	moneyScale    = 2
	quantityScale = 3
)

// Money 金额，保留 2 位小数
type Money struct {
	decimal.Decimal
}

// NewMoneyFromDecimal 创建金额并四舍五入到分
func NewMoneyFromDecimal(amount decimal.Decimal) Money {
	return Money{Decimal: amount.Round(moneyScale)}
}

// NewMoneyFromString 解析十进制字符串，例如 "12.50"
func NewMoneyFromString(raw string) (Money, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return Money{}, err
	}
	return NewMoneyFromDecimal(d), nil
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Money) UnmarshalJSON(b []byte) error {
	d, err := unmarshalDecimal(b)
	if err != nil {
		return err
	}
	m.Decimal = d.Round(moneyScale)
	return nil
}

func (m Money) Value() (driver.Value, error) {
	return m.Decimal.Round(moneyScale).Value()
}

// Scan 兼容驱动为 decimal 列及 SUM() 返回的各种类型（含 sqlite 浮点），并消除浮点误差
func (m *Money) Scan(value interface{}) error {
	if value == nil {
		m.Decimal = decimal.Zero
		return nil
	}
	if err := m.Decimal.Scan(value); err != nil {
		return err
	}
	m.Decimal = m.Decimal.Round(moneyScale)
	return nil
}

func (m Money) String() string {
	return m.Decimal.Round(moneyScale).StringFixed(moneyScale)
}

// Quantity 货物数量（非负），保留 3 位小数
type Quantity struct {
	decimal.Decimal
}

// NewQuantity 创建数量并按存储精度取整
func NewQuantity(q decimal.Decimal) Quantity {
	return Quantity{Decimal: q.Round(quantityScale)}
}

func (q Quantity) MarshalJSON() ([]byte, error) {
	return json.Marshal(q.String())
}

func (q *Quantity) UnmarshalJSON(b []byte) error {
	d, err := unmarshalDecimal(b)
	if err != nil {
		return err
	}
	q.Decimal = d.Round(quantityScale)
	return nil
}

func (q Quantity) Value() (driver.Value, error) {
	return q.Decimal.Round(quantityScale).Value()
}

func (q *Quantity) Scan(value interface{}) error {
	if value == nil {
		q.Decimal = decimal.Zero
		return nil
	}
	if err := q.Decimal.Scan(value); err != nil {
		return err
	}
	q.Decimal = q.Decimal.Round(quantityScale)
	return nil
}

// String 去掉末尾的 0，例如 12.500 输出 "12.5"
func (q Quantity) String() string {
	return q.Decimal.Round(quantityScale).String()
}

func unmarshalDecimal(b []byte) (decimal.Decimal, error) {
	if len(b) == 0 || string(b) == "null" {
		return decimal.Zero, nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(s)
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromFloat(f), nil
}
