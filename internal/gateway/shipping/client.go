package shipping

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrUnavailable はプロバイダ障害（タイムアウト・5xx）。
// 「配送不可ルート」は空スライスで表し、エラーにはしない。
var ErrUnavailable = errors.New("shipping provider unavailable")

type Location struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	ZipCode string `json:"zip_code,omitempty"`
}

type Rate struct {
	Courier     string `json:"courier"`
	Service     string `json:"service"`
	Description string `json:"description"`
	Cost        int64  `json:"cost"`
	ETD         string `json:"etd"`
}

// Client は行政区分ルックアップと配送料見積もりのRESTクライアント。
// 区分はほぼ変わらないのでCacheに24hで載せる。
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	cache   *Cache
	log     *zap.Logger
}

func NewClient(baseURL string, apiKey string, timeout time.Duration, cache *Cache, log *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		cache:   cache,
		log:     log,
	}
}

func (c *Client) Provinces(ctx context.Context) ([]Location, error) {
	return c.locations(ctx, "/destination/province", "shipping:province")
}

func (c *Client) Cities(ctx context.Context, provinceID int64) ([]Location, error) {
	return c.locations(ctx,
		fmt.Sprintf("/destination/city/%d", provinceID),
		fmt.Sprintf("shipping:city:%d", provinceID))
}

func (c *Client) Districts(ctx context.Context, cityID int64) ([]Location, error) {
	return c.locations(ctx,
		fmt.Sprintf("/destination/district/%d", cityID),
		fmt.Sprintf("shipping:district:%d", cityID))
}

// Villages はプロバイダ用語だとsub-district。
func (c *Client) Villages(ctx context.Context, districtID int64) ([]Location, error) {
	return c.locations(ctx,
		fmt.Sprintf("/destination/sub-district/%d", districtID),
		fmt.Sprintf("shipping:village:%d", districtID))
}

// Quote は発地区→着地区の配送料候補を安い順で返す。
func (c *Client) Quote(ctx context.Context, originDistrictID int64, destinationDistrictID int64, weightGrams int64, couriers []string) ([]Rate, error) {
	cacheKey := fmt.Sprintf("shipping:cost:%d:%d:%d:%s",
		originDistrictID, destinationDistrictID, weightGrams, strings.Join(couriers, ":"))

	var cached []Rate
	if c.cache.Get(ctx, cacheKey, &cached) {
		return cached, nil
	}

	form := url.Values{}
	form.Set("origin", strconv.FormatInt(originDistrictID, 10))
	form.Set("destination", strconv.FormatInt(destinationDistrictID, 10))
	form.Set("weight", strconv.FormatInt(weightGrams, 10))
	form.Set("courier", strings.Join(couriers, ":"))
	form.Set("price", "lowest")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/calculate/district/domestic-cost",
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("key", c.apiKey)

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Data []struct {
			Name        string `json:"name"`
			Code        string `json:"code"`
			Service     string `json:"service"`
			Description string `json:"description"`
			Cost        int64  `json:"cost"`
			ETD         string `json:"etd"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, ErrUnavailable
	}

	rates := make([]Rate, 0, len(parsed.Data))
	for _, d := range parsed.Data {
		courier := d.Code
		if courier == "" {
			courier = d.Name
		}
		rates = append(rates, Rate{
			Courier:     courier,
			Service:     d.Service,
			Description: d.Description,
			Cost:        d.Cost,
			ETD:         d.ETD,
		})
	}
	sort.Slice(rates, func(i, j int) bool { return rates[i].Cost < rates[j].Cost })

	c.cache.Set(ctx, cacheKey, rates)
	return rates, nil
}

func (c *Client) locations(ctx context.Context, path string, cacheKey string) ([]Location, error) {
	var cached []Location
	if c.cache.Get(ctx, cacheKey, &cached) {
		return cached, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("key", c.apiKey)

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Data []struct {
			ID      int64  `json:"id"`
			Name    string `json:"name"`
			ZipCode string `json:"zip_code"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, ErrUnavailable
	}

	out := make([]Location, 0, len(parsed.Data))
	for _, d := range parsed.Data {
		out = append(out, Location{ID: d.ID, Name: d.Name, ZipCode: d.ZipCode})
	}

	c.cache.Set(ctx, cacheKey, out)
	return out, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("shipping provider request failed",
			zap.String("url", req.URL.Path), zap.Error(err))
		return nil, ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("shipping provider returned non-200",
			zap.String("url", req.URL.Path), zap.Int("status", resp.StatusCode))
		return nil, ErrUnavailable
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ErrUnavailable
	}
	return body, nil
}
