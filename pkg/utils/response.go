package utils

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
)

// RespondJSON 发送JSON响应
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// RespondError 发送错误响应
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, map[string]string{"error": message})
}

// RespondDownload 以附件形式发送格式化的JSON文档
func RespondDownload(w http.ResponseWriter, filename string, payload interface{}) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		log.Printf("failed to encode download %s: %v", filename, err)
		RespondError(w, http.StatusInternalServerError, "failed to encode export")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Printf("failed to write download %s: %v", filename, err)
	}
}
