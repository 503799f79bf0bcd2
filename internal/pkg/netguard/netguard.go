// Package netguard 限制服务端抓取只能访问公网地址
package netguard

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"syscall"
	"time"

	"k8s.io/klog/v2"
)

// ErrBlockedAddress 目标地址属于内网、回环或链路本地网段
var ErrBlockedAddress = errors.New("address is not publicly routable")

// 运营商级 NAT 网段，netip 不把它算作私有地址
var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

// IsPublic 判断 IP 是否可以作为抓取目标
func IsPublic(addr netip.Addr) bool {
	addr = addr.Unmap()
	if !addr.IsValid() {
		return false
	}
	switch {
	case addr.IsLoopback(),
		addr.IsPrivate(),
		addr.IsLinkLocalUnicast(),
		addr.IsLinkLocalMulticast(),
		addr.IsInterfaceLocalMulticast(),
		addr.IsMulticast(),
		addr.IsUnspecified():
		return false
	}
	return !sharedAddressSpace.Contains(addr)
}

// CheckURL 拒绝主机部分为非公网 IP 字面量的 URL，域名在连接时再校验
func CheckURL(u *url.URL) error {
	addr, err := netip.ParseAddr(u.Hostname())
	if err != nil {
		return nil
	}
	if !IsPublic(addr) {
		return fmt.Errorf("%s: %w", u.Hostname(), ErrBlockedAddress)
	}
	return nil
}

// control 在建立连接前校验解析后的地址，重定向同样经过这里
func control(network, address string, _ syscall.RawConn) error {
	addrPort, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("%s: %w", address, ErrBlockedAddress)
	}
	if !IsPublic(addrPort.Addr()) {
		klog.Warningf("[netguard] 拒绝连接非公网地址: network=%s, address=%s", network, address)
		return fmt.Errorf("%s: %w", address, ErrBlockedAddress)
	}
	return nil
}

// NewClient 创建只允许访问公网地址的 HTTP 客户端
// allowPrivate 为 true 时不做限制，仅用于本地开发
func NewClient(timeout time.Duration, allowPrivate bool) *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	if !allowPrivate {
		dialer.Control = control
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
