// Package mongo provides MongoDB connection management for the platform.
//
// Configuration is environment-driven (see Config) and the constructor
// retries the initial connection to ride out transient failures during
// deploys. A Healthcheck helper integrates the client into readiness probes.
//
//	cfg := mongo.Config{ConnectionURL: "mongodb://localhost:27017"}
//	db, err := mongo.NewWithDatabase(ctx, cfg, "rundetips")
package mongo
