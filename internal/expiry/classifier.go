// Package expiry 按自然日比较日期与参考日期，供交付报表与库存批次共用
package expiry

import (
	"time"

	"github.com/farm-ledger/internal/constants"
)

// Classification 到期分类结果。已过期时 Days 为过期天数，即将到期时为剩余天数，其余为 0
type Classification struct {
	Label string `json:"label"`
	Days  int    `json:"days"`
}

func NotApplicable() Classification {
	return Classification{Label: constants.ExpiryNotApplicable}
}

func Expired(daysAgo int) Classification {
	return Classification{Label: constants.ExpiryExpired, Days: daysAgo}
}

func ExpiringSoon(daysLeft int) Classification {
	return Classification{Label: constants.ExpiringSoon, Days: daysLeft}
}

func Valid() Classification {
	return Classification{Label: constants.ExpiryValid}
}

func (c Classification) IsExpired() bool {
	return c.Label == constants.ExpiryExpired
}

func (c Classification) IsExpiringSoon() bool {
	return c.Label == constants.ExpiringSoon
}

func (c Classification) IsValid() bool {
	return c.Label == constants.ExpiryValid
}

func (c Classification) IsNotApplicable() bool {
	return c.Label == "" || c.Label == constants.ExpiryNotApplicable
}

// Classifier 到期分类器：即将到期窗口天数，以及判断“今天”所用的业务时区（nil 表示 UTC）
type Classifier struct {
	WindowDays int
	Location   *time.Location
}

// NewClassifier 创建分类器，windowDays 非正数时使用默认 30 天
func NewClassifier(windowDays int) Classifier {
	if windowDays <= 0 {
		windowDays = constants.DefaultExpiringSoonDays
	}
	return Classifier{WindowDays: windowDays}
}

// In 返回在 loc 时区读取参考时间的副本
func (c Classifier) In(loc *time.Location) Classifier {
	c.Location = loc
	return c
}

func (c Classifier) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// Classify 比较 date 的自然日与 reference 在业务时区的自然日。
// 入库日期以 UTC 零点保存，无论驱动以哪个时区返回都按 UTC 读取。
func (c Classifier) Classify(date *time.Time, reference time.Time) Classification {
	if date == nil || date.IsZero() {
		return NotApplicable()
	}
	window := c.WindowDays
	if window <= 0 {
		window = constants.DefaultExpiringSoonDays
	}

	remaining := c.DaysUntil(*date, reference)
	switch {
	case remaining < 0:
		return Expired(-remaining)
	case remaining <= window:
		return ExpiringSoon(remaining)
	default:
		return Valid()
	}
}

// DaysUntil 计算从参考业务日到入库日期的自然日天数
func (c Classifier) DaysUntil(date, reference time.Time) int {
	start := c.Day(reference)
	end := calendarDay(date.UTC())
	return int(end.Sub(start).Hours() / 24)
}

// Day 返回参考时间在业务时区的自然日（UTC 零点表示，可与入库日期比较）
func (c Classifier) Day(reference time.Time) time.Time {
	return calendarDay(reference.In(c.location()))
}

// Horizon 返回参考日之后第 days+1 天；早于该值的入库日期均在 days 天之内
func (c Classifier) Horizon(reference time.Time, days int) time.Time {
	return c.Day(reference).AddDate(0, 0, days+1)
}

// Classify 使用默认 30 天窗口与 UTC 分类
func Classify(date *time.Time, reference time.Time) Classification {
	return NewClassifier(constants.DefaultExpiringSoonDays).Classify(date, reference)
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
