// Package warmup precomputes sentence embeddings so that later measurements
// are served from the embedding cache.
//
// A Warmer splits the corpus into batches and embeds them on an ants worker
// pool through a cache-backed embedder. Progress is written by a
// ProgressTracker, which the CLI also uses for bulk imports.
//
// # Usage
//
//	warmer, err := warmup.NewWarmer(provider.Embedder(),
//	    warmup.WithBatchSize(16),
//	    warmup.WithProgress(os.Stderr),
//	)
//	if err != nil {
//	    return err
//	}
//	defer warmer.Release()
//
//	count, err := warmer.Run(ctx, store.Sentences())
package warmup
