package wayback

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"itvserver/models"

	"go.uber.org/zap"
)

const defaultBaseURL = "https://archive.org/wayback/available"

// プロバイダ固有のエラー。Engineはこれらをそのまま呼び出し元へ伝播する。
var (
	ErrNoSnapshot      = errors.New("no archived snapshot available")
	ErrUnsupportedType = errors.New("unsupported content type")
)

var (
	authorPattern  = regexp.MustCompile(`data-author="([^"]+)"`)
	contentPattern = regexp.MustCompile(`data-content="([^"]+)"`)
)

// availability APIのレスポンス
type availabilityResponse struct {
	ArchivedSnapshots struct {
		Closest *snapshot `json:"closest"`
	} `json:"archived_snapshots"`
}

type snapshot struct {
	Available bool   `json:"available"`
	URL       string `json:"url"`
	Timestamp string `json:"timestamp"`
}

// Service はWayback Machineからアーカイブ済みコンテンツを1件取得するプロバイダ。
// baseURLとclientはテストでhttptestサーバーに差し替えられる。
type Service struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
	randGen *rand.Rand
}

func NewService(apiKey string, logger *zap.Logger) *Service {
	return &Service{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
		randGen: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewServiceWithBaseURL はテスト用にエンドポイントを差し替えたServiceを返す。
func NewServiceWithBaseURL(apiKey, baseURL string, client *http.Client, logger *zap.Logger) *Service {
	s := NewService(apiKey, logger)
	s.baseURL = baseURL
	if client != nil {
		s.client = client
	}
	return s
}

// FetchContent は指定URLのアーカイブスナップショットを探し、本文と投稿者を
// 抽出して返す。スナップショットが存在しない場合はErrNoSnapshot。
func (s *Service) FetchContent(ctx context.Context, contentType, sourceURL string) (*models.ContentItem, error) {
	switch contentType {
	case models.ContentTypeReddit, models.ContentTypeFacebook, models.ContentTypeImgur:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	snap, err := s.lookupSnapshot(ctx, sourceURL)
	if err != nil {
		s.logger.Error("Error fetching from Wayback Machine", zap.String("url", sourceURL), zap.Error(err))
		return nil, err
	}

	// スナップショット本体を取得して本文を抽出
	html, err := s.fetchBody(ctx, snap.URL)
	if err != nil {
		s.logger.Error("Error fetching snapshot body", zap.String("snapshotURL", snap.URL), zap.Error(err))
		return nil, err
	}
	text, author := parseContent(html)

	return &models.ContentItem{
		Type:      contentType,
		ID:        base64.StdEncoding.EncodeToString([]byte(sourceURL)),
		URL:       snap.URL,
		Content:   text,
		Author:    author,
		Timestamp: snap.Timestamp,
	}, nil
}

func (s *Service) lookupSnapshot(ctx context.Context, sourceURL string) (*snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL, nil)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("url", sourceURL)
	q.Set("timestamp", s.randomTimestamp())
	req.URL.RawQuery = q.Encode()
	if s.apiKey != "" {
		req.Header.Set("Authorization", "LOW "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("availability API returned status %d", resp.StatusCode)
	}

	var availability availabilityResponse
	if err := json.NewDecoder(resp.Body).Decode(&availability); err != nil {
		return nil, err
	}

	closest := availability.ArchivedSnapshots.Closest
	if closest == nil || !closest.Available {
		return nil, ErrNoSnapshot
	}
	return closest, nil
}

func (s *Service) fetchBody(ctx context.Context, snapshotURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, snapshotURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// 2010年から現在までのランダムな日付を返す（検索の起点に使う）
func (s *Service) randomTimestamp() string {
	start := time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC).Unix()
	end := time.Now().Unix()
	t := time.Unix(start+s.randGen.Int63n(end-start), 0)
	return t.UTC().Format("2006-01-02")
}

// data-author / data-content 属性から投稿者と本文を抽出する。
// 3プラットフォームともアーカイブHTMLに同じ属性が付くため共通の正規表現で済む。
func parseContent(html string) (text, author string) {
	author = "unknown"
	text = "No content found"
	if m := authorPattern.FindStringSubmatch(html); m != nil {
		author = m[1]
	}
	if m := contentPattern.FindStringSubmatch(html); m != nil {
		text = m[1]
	}
	return text, author
}
