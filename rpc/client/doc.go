// Package client implements the client facade and the response interpreter.
//
// A Client owns one transport. Every method encodes its command with the common package,
// sends it through the transport, and interprets the JSON reply according to a Projection.
//
// Key Components:
//
//   - Client: one method per server command (Ping, Set, Get, Scan, ...) plus Do for
//     arbitrary commands and typed GET helpers (GetObject, GetPoint, GetBounds, GetHash).
//
//   - Interpret: turns a raw reply into a Result. Replies that are not JSON fail with
//     common.ErrMalformedResponse, replies with ok=false fail with common.ErrServer.
//
//   - Projection: ProjectRaw, ProjectEnvelope (the reply without ok and elapsed) or
//     ProjectProperty(name).
//
// Usage Example:
//
//	config := common.DefaultClientConfig()
//	c, err := client.NewClient(config, redis.NewRedisClientTransport())
//	if err != nil {
//		return err
//	}
//	defer c.Close()
//
//	loc := common.Coordinates(33.5123, -112.2693)
//	err = c.Set(ctx, "fleet", "truck1", loc, &common.SetOptions{
//		Fields: []common.Field{{Name: "speed", Value: 90}},
//	})
//	obj, err := c.Get(ctx, "fleet", "truck1", nil)
//	fmt.Println(obj.Get("object").Raw())
//
// Thread Safety:
//
//	A Client can be used concurrently. Matching replies to requests is done by the transport.
package client
