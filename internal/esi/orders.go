package esi

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// Order mirrors the ESI market order response, plus item catalog fields
// filled in by the market layer.
type Order struct {
	OrderID      int64     `json:"order_id"`
	TypeID       int32     `json:"type_id"`
	LocationID   int64     `json:"location_id"`
	SystemID     int32     `json:"system_id"`
	Price        float64   `json:"price"`
	IsBuyOrder   bool      `json:"is_buy_order"`
	Issued       time.Time `json:"issued"`
	VolumeRemain int64     `json:"volume_remain"`
	RegionID     int32     `json:"-"` // set by us
	ItemName     string    `json:"-"` // set by us from the catalog
	ItemVolume   float64   `json:"-"` // set by us from the catalog
}

// regionOrdersResult is what a coalesced region fetch returns.
type regionOrdersResult struct {
	orders  []Order
	expires time.Time
}

// FetchRegionOrders fetches all market orders for a region, following
// pagination, and returns them together with the snapshot expiry from the
// Expires header. Concurrent calls for the same region are coalesced.
func (c *Client) FetchRegionOrders(regionID int32) ([]Order, time.Time, error) {
	key := fmt.Sprintf("orders:%d", regionID)
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		orders, expires, err := c.fetchRegionOrders(regionID)
		if err != nil {
			return nil, err
		}
		return regionOrdersResult{orders, expires}, nil
	})
	if err != nil {
		return nil, time.Time{}, err
	}
	r := v.(regionOrdersResult)
	return r.orders, r.expires, nil
}

func (c *Client) fetchRegionOrders(regionID int32) ([]Order, time.Time, error) {
	url := fmt.Sprintf("%s/markets/%d/orders/?datasource=tranquility&order_type=all",
		baseURL, regionID)

	page1, resp, err := c.fetchOrderPage(url, 1, regionID)
	if err != nil {
		return nil, time.Time{}, err
	}
	totalPages := parsePages(resp)
	expires := parseExpires(resp)

	if totalPages == 1 {
		return page1, expires, nil
	}

	type pageResult struct {
		data []Order
		err  error
	}
	results := make(chan pageResult, totalPages-1)
	for p := 2; p <= totalPages; p++ {
		go func(pageNum int) {
			data, _, err := c.fetchOrderPage(url, pageNum, regionID)
			results <- pageResult{data: data, err: err}
		}(p)
	}

	all := make([]Order, 0, len(page1)*totalPages)
	all = append(all, page1...)
	for i := 0; i < totalPages-1; i++ {
		r := <-results
		if r.err != nil {
			// A lost page means a partial snapshot; bail out and keep the
			// caller's previous data instead.
			return nil, time.Time{}, r.err
		}
		all = append(all, r.data...)
	}
	log.Printf("[ESI] region %d: %d orders over %d pages", regionID, len(all), totalPages)
	return all, expires, nil
}

func (c *Client) fetchOrderPage(url string, page int, regionID int32) ([]Order, *http.Response, error) {
	c.sem <- struct{}{}
	defer func() { <-c.sem }()

	req, err := newRequest("GET", fmt.Sprintf("%s&page=%d", url, page), nil)
	if err != nil {
		return nil, nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, nil, fmt.Errorf("ESI %d on page %d", resp.StatusCode, page)
	}

	var data []Order
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, nil, fmt.Errorf("decode page %d: %w", page, err)
	}
	for i := range data {
		data[i].RegionID = regionID
	}
	return data, resp, nil
}
