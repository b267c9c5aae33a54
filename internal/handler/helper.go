package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// dateLayouts 支持的日期格式
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseDate 解析日期参数并转换为UTC
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date: %q", value)
}

// parseIDParam 读取URL路径中的ID
func parseIDParam(c *gin.Context) string {
	return strings.TrimSpace(c.Param("id"))
}

// optionalString 区分字段缺失、显式null和字符串值
type optionalString struct {
	Set   bool
	Value *string
}

// UnmarshalJSON 仅在字段出现时被调用，包括值为null
func (o *optionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}
