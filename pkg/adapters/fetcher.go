package adapters

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strings"

	"github.com/shouni/dvphoto-bot/pkg/domain"
	"github.com/shouni/go-http-kit/pkg/httpkit"
)

// TelegramFetcher はファイル ID から実体をダウンロードします。
type TelegramFetcher struct {
	api        BotAPI
	httpClient httpkit.ClientInterface
	fileHost   string
}

// NewTelegramFetcher は依存関係を注入して TelegramFetcher を初期化します。
// fileHost はダウンロードを許可するホスト名です（通常は api.telegram.org）。
func NewTelegramFetcher(api BotAPI, httpClient httpkit.ClientInterface, fileHost string) (*TelegramFetcher, error) {
	if api == nil {
		return nil, fmt.Errorf("api (BotAPI) is required")
	}
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}
	if fileHost == "" {
		return nil, fmt.Errorf("fileHost is required")
	}
	return &TelegramFetcher{api: api, httpClient: httpClient, fileHost: strings.ToLower(fileHost)}, nil
}

// FetchBytes はファイルをダウンロードします。失敗はすべて domain.ErrTransport で返します。
func (f *TelegramFetcher) FetchBytes(ctx context.Context, handle domain.FileHandle) ([]byte, error) {
	if handle == "" {
		return nil, fmt.Errorf("%w: file handle is empty", domain.ErrTransport)
	}
	// URL にはボットトークンが含まれるのでログに出さない
	fileURL, err := f.api.GetFileDirectURL(string(handle))
	if err != nil {
		return nil, fmt.Errorf("%w: ファイルURLの取得に失敗しました: %w", domain.ErrTransport, err)
	}
	if err := checkFileURL(fileURL, f.fileHost); err != nil {
		slog.WarnContext(ctx, "不正なファイルURLをブロックしました", "file_id", handle, "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}

	data, err := f.httpClient.FetchBytes(ctx, fileURL)
	if err != nil {
		return nil, fmt.Errorf("%w: ファイルのダウンロードに失敗しました: %w", domain.ErrTransport, err)
	}
	slog.DebugContext(ctx, "ファイルをダウンロードしました", "file_id", handle, "bytes", len(data))
	return data, nil
}

// checkFileURL はダウンロード先が想定したホストであることを検証します。
// ホストに IP アドレスが直接指定されている場合は、内部ネットワーク宛てを拒否します。
func checkFileURL(rawURL, allowedHost string) error {
	parsed, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return fmt.Errorf("URLパース失敗: %w", err)
	}
	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return fmt.Errorf("不許可スキーム: %s", parsed.Scheme)
	}

	host := strings.ToLower(parsed.Hostname())
	if ip := net.ParseIP(host); ip != nil {
		if ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
			return fmt.Errorf("制限されたネットワークへのアクセスを検知: %s", ip.String())
		}
	}
	if host != allowedHost {
		return fmt.Errorf("不許可ホスト: %s", host)
	}
	return nil
}
