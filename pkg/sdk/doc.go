// Package chatpdf embeds the ChatPDF ingestion and retrieval pipeline in a Go
// program without running the HTTP service.
//
// A Client talks to Redis with the search module for vector storage and to any
// Embedder for text vectors. Source documents are read from a BlobFetcher or a
// local upload directory.
//
//	client, _ := chatpdf.New(ctx,
//	    chatpdf.WithRedis("localhost:6379", ""),
//	    chatpdf.WithEmbedder(myEmbedder),
//	    chatpdf.WithVectorDimensions(768),
//	    chatpdf.WithUploadDir("./uploads"),
//	)
//	defer client.Close()
//
//	res, _ := client.Ingest(ctx, "uploads/report.pdf")
//	answer, _ := client.Context(ctx, "what was the revenue?", res.DocumentKey)
package chatpdf
