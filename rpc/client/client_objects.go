package client

import (
	"context"
	"github.com/ValentinKolb/t38/rpc/common"
	"github.com/tidwall/geojson"
)

// --------------------------------------------------------------------------
// Key commands
// --------------------------------------------------------------------------

// Bounds returns the bounding box of all objects in key
func (c *Client) Bounds(ctx context.Context, key string) (Result, error) {
	return c.invokeRequest(ctx, common.NewBoundsCommand(key), ProjectProperty("bounds"))
}

// Keys returns all keys matching pattern
func (c *Client) Keys(ctx context.Context, pattern string) ([]string, error) {
	res, err := c.invokeRequest(ctx, common.NewKeysCommand(pattern), ProjectProperty("keys"))
	if err != nil {
		return nil, err
	}
	return res.Strings(), nil
}

// Drop removes key and all its objects
func (c *Client) Drop(ctx context.Context, key string) error {
	return c.invokeOk(ctx, common.NewDropCommand(key))
}

// Stats returns the statistics of one or more keys. At least one key is required.
func (c *Client) Stats(ctx context.Context, keys ...string) (Result, error) {
	cmd, err := common.NewStatsCommand(keys...)
	if err != nil {
		return Result{}, c.rejected(common.CmdStats, err)
	}
	return c.invokeRequest(ctx, cmd, ProjectProperty("stats"))
}

// Scan returns all objects of key (the reply without ok and elapsed)
func (c *Client) Scan(ctx context.Context, key string) (Result, error) {
	return c.invokeRequest(ctx, common.NewScanCommand(key), ProjectEnvelope)
}

// PDel removes all objects of key whose id matches pattern
func (c *Client) PDel(ctx context.Context, key, pattern string) error {
	return c.invokeOk(ctx, common.NewPDelCommand(key, pattern))
}

// --------------------------------------------------------------------------
// Object commands
// --------------------------------------------------------------------------

// Set stores an object. An invalid location fails with ErrInvalidArgument and nothing is sent.
func (c *Client) Set(ctx context.Context, key, id string, loc common.Location, opts *common.SetOptions) error {
	cmd, err := common.BuildSet(key, id, loc, opts)
	if err != nil {
		return c.rejected(common.CmdSet, err)
	}
	return c.invokeOk(ctx, cmd)
}

// FSet sets a single field of an object
func (c *Client) FSet(ctx context.Context, key, id, field string, value float64) error {
	return c.invokeOk(ctx, common.NewFSetCommand(key, id, field, value))
}

// Get returns an object (the reply without ok and elapsed)
func (c *Client) Get(ctx context.Context, key, id string, opts *common.GetOptions) (Result, error) {
	return c.invokeRequest(ctx, common.BuildGet(key, id, opts), ProjectEnvelope)
}

// Del removes an object
func (c *Client) Del(ctx context.Context, key, id string) error {
	return c.invokeOk(ctx, common.NewDelCommand(key, id))
}

// Expire sets a timeout on an object
func (c *Client) Expire(ctx context.Context, key, id string, seconds int) error {
	return c.invokeOk(ctx, common.NewExpireCommand(key, id, seconds))
}

// TTL returns the remaining time to live of an object in seconds
func (c *Client) TTL(ctx context.Context, key, id string) (float64, error) {
	res, err := c.invokeRequest(ctx, common.NewTTLCommand(key, id), ProjectProperty("ttl"))
	if err != nil {
		return 0, err
	}
	return res.Float(), nil
}

// Persist removes the timeout of an object
func (c *Client) Persist(ctx context.Context, key, id string) error {
	return c.invokeOk(ctx, common.NewPersistCommand(key, id))
}

// --------------------------------------------------------------------------
// JSON commands
// --------------------------------------------------------------------------

// JSet sets the value at path inside the JSON document of an object
func (c *Client) JSet(ctx context.Context, key, id, path, value string) error {
	return c.invokeOk(ctx, common.NewJSetCommand(key, id, path, value))
}

// JGet returns the value at one or more paths. At least one path is required.
func (c *Client) JGet(ctx context.Context, key, id string, paths ...string) (Result, error) {
	cmd, err := common.NewJGetCommand(key, id, paths...)
	if err != nil {
		return Result{}, c.rejected(common.CmdJGet, err)
	}
	return c.invokeRequest(ctx, cmd, ProjectProperty("value"))
}

// JDel deletes the value at path
func (c *Client) JDel(ctx context.Context, key, id, path string) error {
	return c.invokeOk(ctx, common.NewJDelCommand(key, id, path))
}

// --------------------------------------------------------------------------
// Typed GET helpers
// --------------------------------------------------------------------------

// GetObject returns an object as parsed GeoJSON
func (c *Client) GetObject(ctx context.Context, key, id string) (geojson.Object, error) {
	res, err := c.invokeRequest(ctx, common.BuildGet(key, id, &common.GetOptions{Type: common.OutputObject}), ProjectProperty("object"))
	if err != nil {
		return nil, err
	}
	return res.GeoJSON()
}

// GetPoint returns the point of an object (the center for non point objects)
func (c *Client) GetPoint(ctx context.Context, key, id string) (common.Point, error) {
	res, err := c.invokeRequest(ctx, common.BuildGet(key, id, &common.GetOptions{Type: common.OutputPoint}), ProjectProperty("point"))
	if err != nil {
		return common.Point{}, err
	}
	var p common.Point
	err = res.Decode(&p)
	return p, err
}

// GetBounds returns the bounding box of an object
func (c *Client) GetBounds(ctx context.Context, key, id string) (common.Bounds, error) {
	res, err := c.invokeRequest(ctx, common.BuildGet(key, id, &common.GetOptions{Type: common.OutputBounds}), ProjectProperty("bounds"))
	if err != nil {
		return common.Bounds{}, err
	}
	var b common.Bounds
	err = res.Decode(&b)
	return b, err
}

// GetHash returns the geohash of an object. A precision <= 0 uses the server default.
func (c *Client) GetHash(ctx context.Context, key, id string, precision int) (common.Geohash, error) {
	res, err := c.invokeRequest(ctx, common.BuildGet(key, id, &common.GetOptions{Type: common.OutputHash, Precision: precision}), ProjectProperty("hash"))
	if err != nil {
		return "", err
	}
	if !res.Exists() {
		return "", common.NewMalformedResponseError(res.Raw(), errMissingValue)
	}
	return common.Geohash(res.String()), nil
}
