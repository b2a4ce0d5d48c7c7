package node

import (
	"encoding/json"
	"strings"
)

// ExtractJSONObject 返回文本中第一个能完整解析的 JSON 对象，模型常在前后夹带说明或代码围栏
func ExtractJSONObject(s string) (string, bool) {
	offset := 0
	for {
		i := strings.IndexByte(s[offset:], '{')
		if i < 0 {
			return "", false
		}
		start := offset + i

		var obj map[string]json.RawMessage
		dec := json.NewDecoder(strings.NewReader(s[start:]))
		if err := dec.Decode(&obj); err == nil {
			return s[start : start+int(dec.InputOffset())], true
		}
		offset = start + 1
	}
}
