// Package netcheck holds the one-shot connectivity probes the process runs
// before serving traffic. It is a distinct pre-flight step so deployments can
// gate on it and tests can skip it entirely.
package netcheck

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"promptoon-golang/server/internal/config"
	"promptoon-golang/server/internal/logger"
)

const (
	dialTimeout = 5 * time.Second
	httpTimeout = 10 * time.Second

	// Reference host proving the proxy can reach the public internet.
	internetRefURL = "https://www.google.com"
)

// CheckProxyConnectivity verifies the proxy port accepts TCP connections.
func CheckProxyConnectivity(proxyURL string) error {
	parsed, err := url.Parse(proxyURL)
	if err != nil {
		return fmt.Errorf("parse proxy url: %w", err)
	}
	addr := parsed.Host
	logger.Info("检测代理可达性: %s...", addr)

	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return fmt.Errorf("proxy unreachable: %w", err)
	}
	_ = conn.Close()
	logger.Info("代理端口可达")
	return nil
}

// CheckInternetViaProxy issues one GET for refURL through the proxy and
// requires a 200.
func CheckInternetViaProxy(proxyURL, refURL string) error {
	client, err := proxiedClient(proxyURL)
	if err != nil {
		return err
	}

	logger.Info("验证代理是否能访问外网...")
	resp, err := client.Get(refURL)
	if err != nil {
		return fmt.Errorf("internet unreachable via proxy: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("reference host returned HTTP %d", resp.StatusCode)
	}
	logger.Info("能通过代理成功访问外网")
	return nil
}

// CheckUpstreamAccess probes the upstream API host through the proxy. A 401
// counts as reachable: it proves routing works, only the key is absent.
func CheckUpstreamAccess(proxyURL, checkURL string) error {
	client, err := proxiedClient(proxyURL)
	if err != nil {
		return err
	}

	resp, err := client.Get(checkURL)
	if err != nil {
		return fmt.Errorf("upstream API unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusUnauthorized {
		return fmt.Errorf("upstream API returned HTTP %d", resp.StatusCode)
	}
	return nil
}

// Preflight runs the startup gate. An error means the process must not start
// serving.
func Preflight(cfg *config.Config) error {
	if cfg.SkipNetCheck {
		logger.Warn("跳过启动网络检查 (SKIP_NET_CHECK)")
		return nil
	}
	if cfg.Proxy == "" {
		logger.Warn("未配置代理，跳过网络检查")
		return nil
	}

	if err := CheckProxyConnectivity(cfg.Proxy); err != nil {
		return err
	}
	if err := CheckInternetViaProxy(cfg.Proxy, internetRefURL); err != nil {
		return err
	}
	return nil
}

func proxiedClient(proxyURL string) (*http.Client, error) {
	parsed, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("parse proxy url: %w", err)
	}
	return &http.Client{
		Transport: &http.Transport{Proxy: http.ProxyURL(parsed)},
		Timeout:   httpTimeout,
	}, nil
}
