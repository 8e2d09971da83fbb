// Package mongo file: internal/adapter/database/mongo/store.go
package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// docStore 是适配器需要的最小文档库操作集合
type docStore interface {
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
	CollectionNames(ctx context.Context) ([]string, error)
	Sample(ctx context.Context, collection string, limit int64) ([]bson.D, error)
	Aggregate(ctx context.Context, collection string, pipeline []bson.M) ([]bson.M, error)
}

type dialer func(ctx context.Context, cfg *ClientConfig) (docStore, error)

// driverStore 用官方驱动实现 docStore，绑定到一个库
type driverStore struct {
	client   *driver.Client
	database string
}

func dialDriver(ctx context.Context, cfg *ClientConfig) (docStore, error) {
	client, err := driver.Connect(ctx, cfg.Client)
	if err != nil {
		return nil, err
	}
	return &driverStore{client: client, database: cfg.Database}, nil
}

func (s *driverStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *driverStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *driverStore) CollectionNames(ctx context.Context) ([]string, error) {
	return s.client.Database(s.database).ListCollectionNames(ctx, bson.D{})
}

func (s *driverStore) Sample(ctx context.Context, collection string, limit int64) ([]bson.D, error) {
	cur, err := s.client.Database(s.database).Collection(collection).Find(ctx, bson.D{}, options.Find().SetLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("采样集合 '%s' 失败: %w", collection, err)
	}
	var docs []bson.D
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("读取集合 '%s' 样本失败: %w", collection, err)
	}
	return docs, nil
}

func (s *driverStore) Aggregate(ctx context.Context, collection string, pipeline []bson.M) ([]bson.M, error) {
	cur, err := s.client.Database(s.database).Collection(collection).Aggregate(ctx, pipeline, options.Aggregate().SetAllowDiskUse(true))
	if err != nil {
		return nil, err
	}
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}
