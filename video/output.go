package video

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
)

// remoteError 兼容字符串与 {message: ...} 两种错误字段
type remoteError string

// UnmarshalJSON 实现 json.Unmarshaler
func (e *remoteError) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*e = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*e = remoteError(strings.TrimSpace(s))
		return nil
	}

	var obj struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
		Code    string `json:"code"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		switch {
		case obj.Message != "":
			*e = remoteError(obj.Message)
		case obj.Detail != "":
			*e = remoteError(obj.Detail)
		default:
			*e = remoteError(obj.Code)
		}
		return nil
	}

	// 其它形状原样保留
	*e = remoteError(string(data))
	return nil
}

func (e remoteError) String() string { return string(e) }

// validURL 判断是否为可用的 http(s) 结果地址
func validURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// outputURL 从 Replicate 风格的 output 字段取出 URL。
// output 可以是字符串或列表；first 为 false 时列表必须恰好一个元素。
func outputURL(raw json.RawMessage, first bool) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		return s, validURL(s)
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil || len(list) == 0 {
		return "", false
	}
	if !first && len(list) != 1 {
		return "", false
	}
	if err := json.Unmarshal(list[0], &s); err != nil {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, validURL(s)
}

// objectOrListURL 兼容 {url: ...} 与 [url, ...] 两种输出形状
func objectOrListURL(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '{' {
		var obj struct {
			URL string `json:"url"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return "", false
		}
		u := strings.TrimSpace(obj.URL)
		return u, validURL(u)
	}
	return outputURL(raw, true)
}

// snapDuration 选择不小于 d 的最小可选时长，超出上限时取最大值
func snapDuration(d int, options []int) int {
	best := 0
	for _, o := range options {
		if o >= d && (best == 0 || o < best) {
			best = o
		}
	}
	if best != 0 {
		return best
	}
	for _, o := range options {
		if o > best {
			best = o
		}
	}
	return best
}

// decodePayload 解码 JobStatus.Payload
func decodePayload(raw json.RawMessage, out any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return errEmptyPayload
	}
	return json.Unmarshal(raw, out)
}

var errEmptyPayload = errors.New("empty payload")
