package i18n

var messages = map[string]map[string]string{
	LocaleEN: {
		"success":                       "success",
		"error.bad_request":             "Invalid request",
		"error.invalid_id":              "Invalid identifier",
		"error.invalid_date":            "Invalid date, expected YYYY-MM-DD",
		"error.unauthorized":            "Please sign in again",
		"error.token_invalid":           "Invalid or expired token",
		"error.forbidden":               "You do not have permission to do this",
		"error.not_found":               "Not found",
		"error.internal":                "Something went wrong, please try again",
		"error.purchase_not_found":      "Purchase order not found",
		"error.supplier_not_found":      "Supplier not found",
		"error.invalid_status":          "Invalid delivery status",
		"error.missing_field":           "Missing required field: %s",
		"error.delivery_date_required":  "Delivery date is required when marking an order delivered",
		"error.delivery_update_failed":  "Could not update the delivery status, please try again",
		"error.history_load_failed":     "Could not load delivery history, please try again",
		"error.inventory_report_failed": "Could not load the batch expiry report, please try again",
		"error.field_too_long":          "Field is too long: %s",
		"error.auth_header_missing":     "Missing authorization header",
		"error.auth_header_invalid":     "Malformed authorization header",
		"error.jwt_secret_missing":      "Token verification is not configured",
		"error.rate_limited":            "Too many updates, please retry in %d seconds",
		"error.rate_limit_unavailable":  "Request guard unavailable, please try again",
		"delivery.status_updated":       "Delivery status updated to %s",
	},
	LocaleZH: {
		"success":                       "成功",
		"error.bad_request":             "请求参数错误",
		"error.invalid_id":              "无效的编号",
		"error.invalid_date":            "日期格式错误，应为 YYYY-MM-DD",
		"error.unauthorized":            "请重新登录",
		"error.token_invalid":           "令牌无效或已过期",
		"error.forbidden":               "无权执行此操作",
		"error.not_found":               "未找到",
		"error.internal":                "系统繁忙，请稍后再试",
		"error.purchase_not_found":      "采购单不存在",
		"error.supplier_not_found":      "供应商不存在",
		"error.invalid_status":          "无效的交付状态",
		"error.missing_field":           "缺少必填字段：%s",
		"error.delivery_date_required":  "标记为已交付时必须填写交付日期",
		"error.delivery_update_failed":  "交付状态更新失败，请稍后再试",
		"error.history_load_failed":     "交付记录加载失败，请稍后再试",
		"error.inventory_report_failed": "批次过期报表加载失败，请稍后再试",
		"error.field_too_long":          "字段过长：%s",
		"error.auth_header_missing":     "缺少认证信息",
		"error.auth_header_invalid":     "认证信息格式错误",
		"error.jwt_secret_missing":      "未配置令牌校验",
		"error.rate_limited":            "操作过于频繁，请在 %d 秒后重试",
		"error.rate_limit_unavailable":  "限流服务不可用，请稍后再试",
		"delivery.status_updated":       "交付状态已更新为 %s",
	},
}
