package gateway

import (
	"encoding/base64"
	"errors"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"strings"

	"promptoon-golang/server/internal/imageutil"
	"promptoon-golang/server/internal/keycodec"
	"promptoon-golang/server/internal/logger"
	"promptoon-golang/server/internal/pkg/httputil"
	"promptoon-golang/server/internal/pkg/id"
	jsonpkg "promptoon-golang/server/internal/pkg/json"
	"promptoon-golang/server/internal/promptcfg"
	"promptoon-golang/server/internal/store"
	"promptoon-golang/server/internal/upstream"
)

const (
	// Uploads above this trigger re-encoding of the upstream payload.
	compressThreshold = 3 * 1024 * 1024
	// Target size the normalizer aims for.
	compressTarget = 512 * 1024

	defaultGeminiModel = "gemini-2.5-flash-lite"
	defaultDoubaoModel = "doubao-seed-1-6-flash"
)

// Gateway owns the per-request pipeline. All collaborators are threaded in
// explicitly; there is no package-level state.
type Gateway struct {
	codec   *keycodec.Codec
	prompts *promptcfg.Prompts
	store   *store.Store
	clients map[string]upstream.Client
}

func New(codec *keycodec.Codec, prompts *promptcfg.Prompts, st *store.Store, clients map[string]upstream.Client) *Gateway {
	return &Gateway{
		codec:   codec,
		prompts: prompts,
		store:   st,
		clients: clients,
	}
}

// HandleEncryptAPIKey turns a plaintext key into the opaque token the browser
// keeps instead of the key itself.
func (g *Gateway) HandleEncryptAPIKey(w http.ResponseWriter, r *http.Request) {
	var body struct {
		APIKey string `json:"api_key"`
	}
	raw, err := io.ReadAll(r.Body)
	if err == nil {
		err = jsonpkg.Unmarshal(raw, &body)
	}
	if err != nil || body.APIKey == "" {
		httputil.WriteError(w, http.StatusBadRequest, "API Key不能为空")
		return
	}

	token, err := g.codec.Encrypt(body.APIKey)
	if err != nil {
		logger.Error("加密API Key失败: %v", err)
		httputil.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"encrypted_key": token,
	})
}

// HandleGeneratePrompt runs the whole pipeline: validate, archive, normalize,
// dispatch to the selected provider, persist, respond.
func (g *Gateway) HandleGeneratePrompt(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("image")
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "没有上传图片")
		return
	}
	defer file.Close()
	if header.Filename == "" {
		httputil.WriteError(w, http.StatusBadRequest, "没有选择文件")
		return
	}

	apiModel := r.FormValue("api_model")
	if apiModel == "" {
		apiModel = "gemini"
	}
	client, ok := g.clients[apiModel]
	if !ok {
		httputil.WriteError(w, http.StatusBadRequest, "不支持的AI模型")
		return
	}

	encryptedKey := r.FormValue("api_key")
	if encryptedKey == "" {
		httputil.WriteError(w, http.StatusBadRequest, "API Key不能为空")
		return
	}
	apiKey, err := g.codec.Decrypt(encryptedKey)
	if err != nil {
		logger.Error("API Key解密失败: %v", err)
		// Deliberately generic: a tampered token reveals nothing more.
		httputil.WriteError(w, http.StatusBadRequest, "API Key解密失败")
		return
	}

	modelVersion := r.FormValue("model_version")
	if modelVersion == "" {
		modelVersion = defaultModelVersion(apiModel)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Archive the exact received bytes before any transformation.
	fileID := id.FileID()
	upload, err := g.store.SaveUpload(fileID, strings.ToLower(filepath.Ext(header.Filename)), data)
	if err != nil {
		logger.Error("保存上传文件失败: %v", err)
		httputil.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	payload := data
	if len(payload) > compressThreshold {
		logger.Info("图片超过3MB，开始压缩...")
		payload = imageutil.Normalize(payload, compressTarget)
		logger.Info("压缩后图片大小: %.2fMB", float64(len(payload))/1024/1024)
	}

	result, err := client.GeneratePrompt(r.Context(), &upstream.Request{
		ImageBase64:  base64.StdEncoding.EncodeToString(payload),
		APIKey:       apiKey,
		ModelVersion: modelVersion,
		Prompt:       g.prompts.Prompt,
		Dialogs:      g.prompts.Dialogs,
	})
	if err != nil {
		g.writeUpstreamError(w, err)
		return
	}

	artifact := &store.Artifact{
		IP:         clientIP(r),
		PromptData: result.PromptData,
		TokenUsage: &result.TokenUsage,
	}
	if err := g.store.SaveResult(upload, artifact); err != nil {
		logger.Warn("保存提示词详情失败: %v", err)
	} else {
		logger.Info("成功保存提示词详情到 %s", g.store.ResultPath(upload))
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"prompt_data":  result.PromptData,
		"raw_response": result.RawResponse,
		"token_usage":  result.TokenUsage,
		"uuid":         fileID,
	})
}

func (g *Gateway) writeUpstreamError(w http.ResponseWriter, err error) {
	var apiErr *upstream.APIError
	if errors.As(err, &apiErr) {
		resp := map[string]any{"success": false, "error": apiErr.Message}
		if apiErr.Details != "" {
			resp["details"] = apiErr.Details
		}
		if apiErr.RawResponse != "" {
			resp["raw_response"] = apiErr.RawResponse
		}
		httputil.WriteJSON(w, apiErr.Status, resp)
		return
	}

	logger.Error("处理图片失败: %v", err)
	httputil.WriteError(w, http.StatusInternalServerError, err.Error())
}

func defaultModelVersion(apiModel string) string {
	if apiModel == "doubao" {
		return defaultDoubaoModel
	}
	return defaultGeminiModel
}

// clientIP honors the first X-Forwarded-For entry so artifacts record the
// real caller behind a reverse proxy.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
