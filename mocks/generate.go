package mocks

//go:generate mockgen -destination=./mock_loader.go -package=mocks github.com/rxtech-lab/argo-features/internal/ingestion Loader
//go:generate mockgen -destination=./mock_feature_writer.go -package=mocks github.com/rxtech-lab/argo-features/pkg/featurestore/writer FeatureWriter
//go:generate mockgen -destination=./mock_indicator.go -package=mocks github.com/rxtech-lab/argo-features/internal/indicator Indicator
//go:generate mockgen -destination=./mock_indicator_registry.go -package=mocks github.com/rxtech-lab/argo-features/internal/indicator IndicatorRegistry
