// Package promptcfg loads the instruction prompt and the example dialog turns
// from the configuration directory. Loading is best effort: a missing or
// broken file logs a warning and falls back to a hardcoded default, it never
// stops the process.
package promptcfg

import (
	"os"
	"path/filepath"

	"promptoon-golang/server/internal/logger"
	jsonpkg "promptoon-golang/server/internal/pkg/json"
	"promptoon-golang/server/internal/upstream"
)

const (
	promptFile  = "default_prompt.txt"
	dialogsFile = "default_dialogs.json"
)

const fallbackPrompt = "默认提示词未配置"

// Prompts is built once at startup and passed by reference; it is never
// mutated afterwards.
type Prompts struct {
	Prompt  string
	Dialogs []upstream.Content
}

func Load(dir string) *Prompts {
	return &Prompts{
		Prompt:  loadPrompt(dir),
		Dialogs: loadDialogs(dir),
	}
}

func loadPrompt(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, promptFile))
	if err != nil {
		logger.Warn("提示词配置文件加载失败: %v", err)
		return fallbackPrompt
	}
	logger.Info("成功加载提示词配置文件")
	return string(data)
}

func loadDialogs(dir string) []upstream.Content {
	data, err := os.ReadFile(filepath.Join(dir, dialogsFile))
	if err != nil {
		logger.Warn("示例对话配置文件加载失败: %v", err)
		return fallbackDialogs()
	}

	var dialogs []upstream.Content
	if err := jsonpkg.Unmarshal(data, &dialogs); err != nil {
		logger.Warn("示例对话配置文件解析失败: %v", err)
		return fallbackDialogs()
	}
	logger.Info("成功加载示例对话配置文件")
	return dialogs
}

func fallbackDialogs() []upstream.Content {
	return []upstream.Content{
		{Role: "user", Parts: []upstream.Part{{Text: "[未配置]"}}},
		{Role: "model", Parts: []upstream.Part{{Text: "示例对话未配置"}}},
	}
}
