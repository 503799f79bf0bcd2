// Package extract 把上传文件和网页转换为纯文本写作样本
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	readability "github.com/go-shiori/go-readability"
	"github.com/ledongthuc/pdf"
	"github.com/penwise/backend/internal/model"
	"github.com/penwise/backend/internal/utils"
	"golang.org/x/net/html"
	"k8s.io/klog/v2"
)

// ErrNoText 文件中没有可用的文本
var ErrNoText = errors.New("no text extracted")

// Result 提取结果
type Result struct {
	// Title 文档自带的标题，可能为空
	Title string
	Text  string
}

// ContentTypeFromFilename 按扩展名推断样本类型
// 只决定样本分类，解析方式由 FromFile 单独按扩展名选择
func ContentTypeFromFilename(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".md":
		return model.ContentTypeArticle
	case ".txt":
		return model.ContentTypeText
	case ".docx", ".doc":
		return model.ContentTypeDocument
	default:
		return model.ContentTypeLinkedInPost
	}
}

// FromFile 按扩展名选择解析方式
func FromFile(filename string, data []byte) (Result, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	klog.V(6).Infof("[extract] 解析文件: name=%s, ext=%s, size=%d", filename, ext, len(data))

	var (
		result Result
		err    error
	)
	switch ext {
	case ".pdf":
		result.Text, err = parsePDF(data)
	case ".html", ".htm":
		result, err = FromHTML(bytes.NewReader(data), nil)
	case ".docx":
		result.Text, err = parseDOCX(data)
	case ".doc":
		// 旧版 .doc 不是 zip 包，退化为按文本读取
		result.Text, err = parseDOCX(data)
		if err != nil {
			result.Text, err = parseText(data), nil
		}
	default:
		result.Text = parseText(data)
	}
	if err != nil {
		return Result{}, fmt.Errorf("parse %s: %w", filename, err)
	}

	result.Text = utils.NormalizeWhitespace(result.Text)
	if result.Text == "" {
		return Result{}, ErrNoText
	}
	return result, nil
}

// FromHTML 使用 readability 提取正文，正文为空时退化为全文文本
func FromHTML(r io.Reader, pageURL *url.URL) (Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Result{}, fmt.Errorf("read html: %w", err)
	}

	var result Result
	article, err := readability.FromReader(bytes.NewReader(data), pageURL)
	if err == nil {
		result.Title = strings.TrimSpace(article.Title)
		result.Text = utils.NormalizeWhitespace(article.TextContent)
	} else {
		klog.V(6).Infof("[extract] readability 解析失败，使用全文: %v", err)
	}

	if result.Text == "" {
		doc, err := html.Parse(bytes.NewReader(data))
		if err != nil {
			return Result{}, fmt.Errorf("parse html: %w", err)
		}
		result.Text = utils.NormalizeWhitespace(htmlText(doc))
	}
	if result.Text == "" {
		return Result{}, ErrNoText
	}
	return result, nil
}

func parseText(data []byte) string {
	text := strings.ReplaceAll(string(data), "\x00", " ")
	return strings.ToValidUTF8(text, "")
}

func parsePDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			klog.Warningf("[extract] 跳过无法解析的 PDF 页: page=%d, err=%v", i, err)
			continue
		}
		if text = strings.TrimSpace(parseText([]byte(text))); text != "" {
			pages = append(pages, text)
		}
	}
	if len(pages) == 0 {
		return "", ErrNoText
	}
	return strings.Join(pages, "\n\n"), nil
}

// htmlText 遍历 DOM 收集文本，跳过 script/style
func htmlText(n *html.Node) string {
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		switch node.Type {
		case html.TextNode:
			buf.WriteString(node.Data)
			buf.WriteString(" ")
		case html.ElementNode:
			if node.Data == "script" || node.Data == "style" || node.Data == "head" {
				return
			}
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
		if node.Type == html.ElementNode {
			switch node.Data {
			case "p", "br", "div", "li", "h1", "h2", "h3", "h4":
				buf.WriteString("\n")
			}
		}
	}
	walk(n)
	return buf.String()
}
