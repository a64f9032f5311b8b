// Package productfinder embeds the conversational product search pipeline
// in a Go program without the HTTP server.
//
// A turn classifies the query, retrieves products by embedding similarity or
// by structured attribute filters, and composes a reply with the LLM.
//
//	client, err := productfinder.New(ctx,
//	    productfinder.WithProducts(products...),
//	    productfinder.WithDimensions(768),
//	    productfinder.WithEmbedder(myEmbedder),
//	    productfinder.WithCompleter(myLLM),
//	)
//	reply, err := client.Chat(ctx, "Nike shoes under $100")
//
// WithPostgres uses a pgvector catalog instead; call Ingest to embed
// products that have no embedding yet.
package productfinder
