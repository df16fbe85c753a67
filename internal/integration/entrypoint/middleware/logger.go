package middleware

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

const redactedValue = "REDACTED"

// RequestLogger is gin's access log with credentials carried in the query string masked.
func RequestLogger(out io.Writer) gin.HandlerFunc {
	return gin.LoggerWithConfig(gin.LoggerConfig{
		Output:    out,
		Formatter: formatRequestLog,
	})
}

func formatRequestLog(param gin.LogFormatterParams) string {
	return fmt.Sprintf("[GIN] %v | %3d | %13v | %15s | %-7s %#v\n%s",
		param.TimeStamp.Format("2006/01/02 - 15:04:05"),
		param.StatusCode,
		param.Latency,
		param.ClientIP,
		param.Method,
		redactQuery(param.Path),
		param.ErrorMessage,
	)
}

// redactQuery masks the access token query parameter. An unparsable query is dropped.
func redactQuery(path string) string {
	base, rawQuery, found := strings.Cut(path, "?")
	if !found || !strings.Contains(rawQuery, accessTokenQueryParam) {
		return path
	}

	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return base
	}
	if values.Has(accessTokenQueryParam) {
		values.Set(accessTokenQueryParam, redactedValue)
	}
	return base + "?" + values.Encode()
}
