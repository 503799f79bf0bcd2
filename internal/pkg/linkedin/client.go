// Package linkedin 读取用户在 LinkedIn 发布过的帖子
package linkedin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"k8s.io/klog/v2"
)

const shareContentKey = "com.linkedin.ugc.ShareContent"

// ErrUnauthorized 访问令牌无效或已过期
var ErrUnauthorized = errors.New("linkedin access token rejected")

// Post LinkedIn 帖子，仅保留正文
type Post struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Client LinkedIn REST 客户端
type Client struct {
	BaseURL string
	Client  *http.Client
}

// NewClient 创建 LinkedIn 客户端
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

// Profile /me 返回的基本资料
type Profile struct {
	ID        string `json:"id"`
	FirstName string `json:"localizedFirstName"`
	LastName  string `json:"localizedLastName"`
}

// PersonURN 返回帖子查询使用的作者 URN
func (p Profile) PersonURN() string {
	return "urn:li:person:" + p.ID
}

type ugcPostsResponse struct {
	Elements []ugcPost `json:"elements"`
}

type ugcPost struct {
	ID              string `json:"id"`
	SpecificContent map[string]struct {
		ShareCommentary struct {
			Text string `json:"text"`
		} `json:"shareCommentary"`
	} `json:"specificContent"`
}

// FetchProfile 获取访问令牌对应的用户
func (c *Client) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	var profile Profile
	if err := c.get(ctx, accessToken, c.BaseURL+"/me", &profile); err != nil {
		return nil, err
	}
	if profile.ID == "" {
		return nil, errors.New("linkedin profile has no id")
	}
	return &profile, nil
}

// FetchPosts 获取作者的 UGC 帖子，跳过正文为空的记录
func (c *Client) FetchPosts(ctx context.Context, accessToken, authorURN string) ([]Post, error) {
	endpoint := fmt.Sprintf("%s/ugcPosts?q=authors&authors=List(%s)", c.BaseURL, url.QueryEscape(authorURN))
	klog.V(6).Infof("[linkedin] 获取帖子: author=%s", authorURN)

	var parsed ugcPostsResponse
	if err := c.get(ctx, accessToken, endpoint, &parsed); err != nil {
		return nil, err
	}

	posts := make([]Post, 0, len(parsed.Elements))
	for _, element := range parsed.Elements {
		text := strings.TrimSpace(element.SpecificContent[shareContentKey].ShareCommentary.Text)
		if text == "" {
			continue
		}
		posts = append(posts, Post{ID: element.ID, Text: text})
	}
	klog.V(6).Infof("[linkedin] 获取帖子完成: total=%d, kept=%d", len(parsed.Elements), len(posts))
	return posts, nil
}

// get 发送 GET 请求并解析 JSON 响应
func (c *Client) get(ctx context.Context, accessToken, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode >= http.StatusBadRequest:
		return fmt.Errorf("linkedin API error: status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
