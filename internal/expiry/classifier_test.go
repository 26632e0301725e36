package expiry

import (
	"testing"
	"time"
)

func datePtr(t time.Time) *time.Time {
	return &t
}

func TestClassifyBoundaries(t *testing.T) {
	ref := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

	cases := []struct {
		name   string
		date   *time.Time
		expect Classification
	}{
		{name: "absent", date: nil, expect: NotApplicable()},
		{name: "five days ago", date: datePtr(ref.AddDate(0, 0, -5)), expect: Expired(5)},
		{name: "yesterday", date: datePtr(ref.AddDate(0, 0, -1)), expect: Expired(1)},
		{name: "today", date: datePtr(ref), expect: ExpiringSoon(0)},
		{name: "thirty days", date: datePtr(ref.AddDate(0, 0, 30)), expect: ExpiringSoon(30)},
		{name: "thirty one days", date: datePtr(ref.AddDate(0, 0, 31)), expect: Valid()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.date, ref)
			if got != tc.expect {
				t.Fatalf("classify(%v) = %+v, expected %+v", tc.date, got, tc.expect)
			}
		})
	}
}

func TestClassifyIgnoresTimeOfDay(t *testing.T) {
	// 深夜的参考时间与次日凌晨的日期相差一天
	ref := time.Date(2026, 1, 31, 23, 59, 0, 0, time.UTC)
	next := time.Date(2026, 2, 1, 0, 1, 0, 0, time.UTC)
	if got := Classify(&next, ref); got != ExpiringSoon(1) {
		t.Fatalf("expected one calendar day, got %+v", got)
	}

	earlier := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	if got := Classify(&earlier, ref); got != ExpiringSoon(0) {
		t.Fatalf("same calendar day should be zero days left, got %+v", got)
	}
}

func TestClassifyAcrossDSTUsesCalendarDays(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	ref := time.Date(2026, 3, 7, 12, 0, 0, 0, loc)
	date := time.Date(2026, 3, 9, 0, 0, 0, 0, loc)
	if got := Classify(&date, ref); got != ExpiringSoon(2) {
		t.Fatalf("expected two days over the DST switch, got %+v", got)
	}
}

func TestClassifierCustomWindow(t *testing.T) {
	ref := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	c := NewClassifier(7)
	if got := c.Classify(datePtr(ref.AddDate(0, 0, 7)), ref); !got.IsExpiringSoon() {
		t.Fatalf("expected expiring soon at window edge, got %+v", got)
	}
	if got := c.Classify(datePtr(ref.AddDate(0, 0, 8)), ref); !got.IsValid() {
		t.Fatalf("expected valid past window, got %+v", got)
	}
	if NewClassifier(0).WindowDays != 30 {
		t.Fatalf("expected default window")
	}
}

func TestClassifyZeroTimeIsNotApplicable(t *testing.T) {
	var zero time.Time
	if got := Classify(&zero, time.Now()); !got.IsNotApplicable() {
		t.Fatalf("expected not applicable, got %+v", got)
	}
}

func TestClassifyStoredDateReadBackInLocalZone(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	c := NewClassifier(30).In(chicago)
	stored := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	readBack := stored.In(chicago)

	ref := time.Date(2026, 6, 10, 9, 0, 0, 0, chicago)
	utc := c.Classify(&stored, ref)
	local := c.Classify(&readBack, ref)
	if utc != ExpiringSoon(30) || local != utc {
		t.Fatalf("expected 30 days for both zones, got utc=%+v local=%+v", utc, local)
	}

	sameDay := time.Date(2026, 7, 10, 9, 0, 0, 0, chicago)
	if got := c.Classify(&readBack, sameDay); got != ExpiringSoon(0) {
		t.Fatalf("expected the expiry day itself to be expiring soon, got %+v", got)
	}
}

func TestClassifierReadsReferenceInBusinessZone(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// UTC 6 月 10 日 23:30 在东京已是 6 月 11 日
	ref := time.Date(2026, 6, 10, 23, 30, 0, 0, time.UTC)
	stored := time.Date(2026, 6, 11, 0, 0, 0, 0, time.UTC)

	if got := NewClassifier(30).Classify(&stored, ref); got != ExpiringSoon(1) {
		t.Fatalf("utc business day: expected one day left, got %+v", got)
	}
	c := NewClassifier(30).In(tokyo)
	if got := c.Classify(&stored, ref); got != ExpiringSoon(0) {
		t.Fatalf("tokyo business day: expected zero days left, got %+v", got)
	}
	if day := c.Day(ref); !day.Equal(stored) {
		t.Fatalf("expected business day %v, got %v", stored, day)
	}
	if horizon := c.Horizon(ref, 7); !horizon.Equal(time.Date(2026, 6, 19, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected horizon %v", horizon)
	}
}
