// Package views holds the templ components for the browser-facing pages.
package views

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Index renders the landing page: an upload form plus the key-encryption
// helper the page script drives against /encrypt_api_key.
func Index() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, indexHTML)
		return err
	})
}

const indexHTML = `<!DOCTYPE html>
<html lang="zh-CN">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Promptoon - 图片提示词生成</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 720px; margin: 2rem auto; padding: 0 1rem; color: #222; }
h1 { font-size: 1.4rem; }
fieldset { border: 1px solid #ccc; border-radius: 6px; margin-bottom: 1rem; padding: 1rem; }
label { display: block; margin: .5rem 0 .2rem; }
input, select, button { font-size: 1rem; padding: .4rem; }
button { cursor: pointer; }
pre { background: #f6f6f6; border-radius: 6px; padding: 1rem; white-space: pre-wrap; word-break: break-all; }
.error { color: #b00020; }
</style>
</head>
<body>
<h1>Promptoon 图片提示词生成</h1>

<fieldset>
<legend>API Key</legend>
<label for="api-key">API Key（仅加密一次，之后浏览器只保存加密令牌）</label>
<input id="api-key" type="password" size="40" placeholder="AIzaSy... / ark-...">
<button id="encrypt-btn" type="button">加密并保存</button>
<span id="key-status"></span>
</fieldset>

<fieldset>
<legend>生成提示词</legend>
<label for="image">选择图片</label>
<input id="image" type="file" accept="image/*">
<label for="api-model">模型提供方</label>
<select id="api-model">
<option value="gemini" selected>Gemini</option>
<option value="doubao">豆包</option>
</select>
<label for="model-version">模型版本（留空使用默认）</label>
<input id="model-version" type="text" size="30">
<p><button id="generate-btn" type="button">生成</button></p>
</fieldset>

<pre id="output">结果会显示在这里。</pre>

<script>
const out = document.getElementById('output');

document.getElementById('encrypt-btn').addEventListener('click', async () => {
  const key = document.getElementById('api-key').value.trim();
  const status = document.getElementById('key-status');
  if (!key) { status.textContent = '请输入 API Key'; return; }
  const resp = await fetch('/encrypt_api_key', {
    method: 'POST',
    headers: {'Content-Type': 'application/json'},
    body: JSON.stringify({api_key: key}),
  });
  const data = await resp.json();
  if (data.success) {
    localStorage.setItem('encrypted_api_key', data.encrypted_key);
    status.textContent = '已保存加密令牌';
  } else {
    status.textContent = data.error || '加密失败';
  }
});

document.getElementById('generate-btn').addEventListener('click', async () => {
  const file = document.getElementById('image').files[0];
  const token = localStorage.getItem('encrypted_api_key');
  if (!file) { out.textContent = '请先选择图片'; return; }
  if (!token) { out.textContent = '请先加密并保存 API Key'; return; }

  const form = new FormData();
  form.append('image', file);
  form.append('api_model', document.getElementById('api-model').value);
  const version = document.getElementById('model-version').value.trim();
  if (version) form.append('model_version', version);
  form.append('api_key', token);

  out.textContent = '生成中...';
  const resp = await fetch('/generate_prompt', {method: 'POST', body: form});
  const data = await resp.json();
  out.textContent = JSON.stringify(data, null, 2);
});
</script>
</body>
</html>
`
