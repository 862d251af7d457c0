package httputil

import (
	"net/http"

	jsonpkg "promptoon-golang/server/internal/pkg/json"
)

// WriteJSON 将 v 以 JSON 写入响应体，并设置状态码与 Content-Type。
// 编码统一走项目的 sonic 封装，保持输出一致性。
func WriteJSON(w http.ResponseWriter, status int, v any) {
	b, err := jsonpkg.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

// WriteError 以本服务统一的 {success:false, error:...} 结构写入错误响应。
func WriteError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoded, _ := jsonpkg.MarshalString(msg)
	_, _ = w.Write([]byte(`{"success":false,"error":` + encoded + `}`))
}
