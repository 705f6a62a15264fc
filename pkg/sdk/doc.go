// Package shopsearch embeds the shopsearch product search and shopping
// assistant in a Go program, without running the HTTP server.
//
// Products come either from memory or from a redis catalog written by
// shopsearch-seed. Queries are embedded by the configured Embedder; without
// one, a local hashing model is used.
//
//	client, _ := shopsearch.New(ctx,
//	    shopsearch.WithProducts(products),
//	    shopsearch.WithEmbedder(myEmbedder),
//	)
//	defer client.Close()
//
//	res, _ := client.Search(ctx, "sac en cuir", shopsearch.Limit(5))
//	for _, r := range res.Results {
//	    fmt.Println(r.Product.Name, r.Score)
//	}
//
//	reply, _ := client.Chat(ctx, "je cherche un collier", shopsearch.Profile{Name: "Léa"})
//	fmt.Println(reply.Answer)
package shopsearch
