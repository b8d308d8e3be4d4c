package mocks

//go:generate mockgen -destination=store.go -package=mocks github.com/pribylovaa/go-shop-client/internal/storage Store
//go:generate mockgen -destination=notifier.go -package=mocks github.com/pribylovaa/go-shop-client/internal/notify Notifier
