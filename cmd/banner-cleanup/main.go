// Command banner-cleanup is a scheduled Lambda that deletes banner images no
// program references any more.
package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/expotoworld/programs-service/internal/cleanup"
	"github.com/expotoworld/programs-service/internal/config"
	"github.com/expotoworld/programs-service/internal/db"
	"github.com/expotoworld/programs-service/internal/logging"
)

type event struct{}

func handler(ctx context.Context, _ event) (cleanup.Result, error) {
	cfg, err := config.Load()
	if err != nil {
		return cleanup.Result{}, err
	}
	logging.Init(cfg.LogLevel)
	defer logging.Sync()

	if cfg.S3Bucket == "" {
		return cleanup.Result{}, fmt.Errorf("PROGRAMS_S3_BUCKET env var is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return cleanup.Result{}, fmt.Errorf("load AWS config: %w", err)
	}

	dbCfg := cfg.Database()
	if cfg.SecretsARN != "" {
		url, err := config.DatabaseURLFromSecret(ctx, secretsmanager.NewFromConfig(awsCfg), cfg.SecretsARN)
		if err != nil {
			return cleanup.Result{}, err
		}
		dbCfg.URL = url
	}
	if !dbCfg.Configured() {
		return cleanup.Result{}, fmt.Errorf("no database configured; set SECRETS_ARN or DATABASE_URL")
	}

	database, err := db.NewDatabaseWithRetry(ctx, dbCfg)
	if err != nil {
		return cleanup.Result{}, err
	}
	defer database.Close()

	sweeper := &cleanup.Sweeper{
		Client: s3.NewFromConfig(awsCfg),
		Bucket: cfg.S3Bucket,
		Refs:   database,
		Grace:  cfg.BannerCleanupGrace,
	}
	res, err := sweeper.Run(ctx)
	if err != nil {
		return res, err
	}
	if err := cleanup.PublishMetrics(ctx, cloudwatch.NewFromConfig(awsCfg), cfg.MetricNamespace, res); err != nil {
		logging.LogKV("warn", "failed to publish cleanup metrics", map[string]interface{}{"error": err})
	}
	return res, nil
}

func main() { lambda.Start(handler) }
