package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/fixture --output domain/fixture --outpkg fixturemock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name NotificationSink --dir ../usecase --output notify --outpkg notifymock --filename notification_sink_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name StatisticsProvider --dir ../usecase --output statsprovider --outpkg statsprovidermock --filename statistics_provider_mock.go
