package i18n

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestResolveLocale(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		url    string
		header string
		expect string
	}{
		{url: "/", header: "", expect: LocaleEN},
		{url: "/", header: "zh-CN,zh;q=0.9,en;q=0.8", expect: LocaleZH},
		{url: "/", header: "fr-FR, en-GB;q=0.7", expect: LocaleEN},
		{url: "/?lang=zh", header: "en-US", expect: LocaleZH},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest("GET", tc.url, nil)
		if tc.header != "" {
			c.Request.Header.Set("Accept-Language", tc.header)
		}
		if got := ResolveLocale(c); got != tc.expect {
			t.Fatalf("url=%s header=%q: expected %s got %s", tc.url, tc.header, tc.expect, got)
		}
	}
}

func TestTranslateFallbacks(t *testing.T) {
	if got := T(LocaleZH, "error.purchase_not_found"); got != "采购单不存在" {
		t.Fatalf("unexpected zh message: %s", got)
	}
	if got := T("de-DE", "error.supplier_not_found"); got != "Supplier not found" {
		t.Fatalf("expected english fallback, got %s", got)
	}
	if got := T(LocaleEN, "no.such.key"); got != "no.such.key" {
		t.Fatalf("expected key fallback, got %s", got)
	}
	if got := Sprintf(LocaleEN, "delivery.status_updated", "shipped"); got != "Delivery status updated to shipped" {
		t.Fatalf("unexpected formatted message: %s", got)
	}
}

func TestCatalogsHaveSameKeys(t *testing.T) {
	for key := range messages[LocaleEN] {
		if _, ok := messages[LocaleZH][key]; !ok {
			t.Fatalf("zh catalog missing %s", key)
		}
	}
}
