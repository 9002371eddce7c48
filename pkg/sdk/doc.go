// Package furnidex embeds the furnidex furniture recommender in a Go program.
//
// The client indexes catalog products into four vector spaces (text, image,
// graph and color) in Redis Stack and answers shopper queries with tiered,
// explained results. It needs a multimodal Embedder such as a CLIP server.
//
//	client, err := furnidex.New(ctx,
//	    furnidex.WithRedis("localhost:6379", ""),
//	    furnidex.WithEmbedder(clip),
//	    furnidex.WithGraphTable("data/graph.db"),
//	)
//	if err != nil { ... }
//	defer client.Close()
//
//	_, _ = client.Index(ctx, products)
//
//	rec, _ := client.Recommend(ctx, "leather sofa under $800", furnidex.Limit(5))
//	for _, m := range rec.Perfect {
//	    fmt.Println(m.Product.Name, m.Summary)
//	}
//
//	similar, _ := client.Similar(ctx, "sofa-42", furnidex.InSpace(furnidex.SpaceGraph))
//
// Graph tables are built offline with the furnidex-index tool; without one,
// products are indexed with zero graph vectors and graph searches return nothing.
package furnidex
