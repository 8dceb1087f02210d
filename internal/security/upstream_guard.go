package security

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/doyensec/safeurl"
)

// UpstreamGuard は上流APIへの接続先を検証し、安全なHTTPクライアントを生成する。
// 上流のベースURLは設定で差し替えられるため、内部ネットワークを指していないことを
// 起動時と接続時の両方で確認する。
type UpstreamGuard struct {
	allowedSchemes []string
}

// NewUpstreamGuard はUpstreamGuardを生成する。
func NewUpstreamGuard() *UpstreamGuard {
	return &UpstreamGuard{allowedSchemes: []string{"https", "http"}}
}

// ValidateBaseURL はベースURLを静的に検証する。
// http/https以外のスキーム、空ホスト、localhost、プライベート/ループバック/リンクローカルの
// IPアドレスを拒否する。DNS解決後の検証はNewClientのクライアント側で行われる。
func (g *UpstreamGuard) ValidateBaseURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid upstream URL: %w", err)
	}

	scheme := strings.ToLower(u.Scheme)
	allowed := false
	for _, s := range g.allowedSchemes {
		if scheme == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("disallowed upstream scheme: %q", u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("empty host in upstream URL: %s", rawURL)
	}
	if strings.EqualFold(host, "localhost") {
		return fmt.Errorf("blocked upstream host: %s", host)
	}
	if ip := net.ParseIP(host); ip != nil {
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified() {
			return fmt.Errorf("blocked upstream IP address: %s", ip)
		}
	}
	return nil
}

// NewClient はsafeurlによる接続先検証付きのHTTPクライアントを生成する。
// DNS解決後のIPアドレスもダイヤル時に検証されるため、DNS再バインディングにも対応する。
func (g *UpstreamGuard) NewClient(timeout time.Duration) *http.Client {
	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes(g.allowedSchemes...).
		SetAllowedPorts(80, 443).
		Build()

	return safeurl.Client(config).Client
}
