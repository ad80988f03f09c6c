// Package unsplash describes the Unsplash REST API: wire records, domain
// models, endpoints, search filters and the repository that ties them to a
// network.Client.
//
// Example usage:
//
//	chain := network.NewChainWith(
//		[]network.RequestMiddleware{unsplash.Authorization(key), unsplash.DefaultHeaders("my-app/1.0")},
//		nil,
//	)
//	client, err := network.New(network.DefaultConfig(unsplash.DefaultBaseURL), chain)
//	repo := unsplash.NewRepository(client)
//	photos, err := repo.Photos(ctx, 1, 20)
package unsplash
