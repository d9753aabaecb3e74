package middleware

//proxy.go
import (
	"net"
	"net/http"
	"strings"
)

// TrustedProxy валидирует, что запрос пришёл от доверенного прокси, и восстанавливает схему из X-Forwarded-Proto
// (OWASP A05: Security Misconfiguration). Схема нужна каноническому редиректу: https://host/path.
func TrustedProxy(trustedIPs []string) func(http.Handler) http.Handler {
	trusted := parseTrusted(trustedIPs)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil || clientIP == "" {
				http.Error(w, "Неверный адрес клиента", http.StatusBadRequest)
				return
			}

			ip := net.ParseIP(clientIP)
			if ip == nil {
				http.Error(w, "Неверный IP", http.StatusBadRequest)
				return
			}

			if !containsIP(trusted, ip) {
				http.Error(w, "Недоверенный прокси", http.StatusForbidden)
				return
			}

			// Без X-Forwarded-Proto схему не трогаем: прямой TLS-запрос определится по r.TLS
			switch strings.ToLower(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto"))) {
			case "https":
				r.URL.Scheme = "https"
			case "http":
				r.URL.Scheme = "http"
			}
			if host := strings.TrimSpace(r.Header.Get("X-Forwarded-Host")); host != "" {
				r.Host = host
			}

			next.ServeHTTP(w, r)
		})
	}
}

func parseTrusted(trustedIPs []string) []*net.IPNet {
	trusted := make([]*net.IPNet, 0, len(trustedIPs))
	for _, ipStr := range trustedIPs {
		_, ipNet, err := net.ParseCIDR(ipStr)
		if err != nil {
			// Для одиночных IP
			ip := net.ParseIP(ipStr)
			if ip == nil {
				continue
			}
			if v4 := ip.To4(); v4 != nil {
				ip = v4
			}
			ipNet = &net.IPNet{IP: ip, Mask: net.CIDRMask(8*len(ip), 8*len(ip))}
		}
		trusted = append(trusted, ipNet)
	}
	return trusted
}

func containsIP(nets []*net.IPNet, ip net.IP) bool {
	for _, n := range nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}
