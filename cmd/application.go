package cmd

import (
	"context"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/actions"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/adapters"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/appconfig"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/caching"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/gateway"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/installation"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/logging"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/mapping"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/meta"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/scheduling"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/storages"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/synchronization"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/vrijbrp"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/zds"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"
)

//application is the wired bundle: storages, services, actions and the installer
type application struct {
	registry    *gateway.Registry
	metaStorage meta.Storage
	objects     gateway.ObjectStore
	callsCache  *caching.CallsCache

	vrijbrp *vrijbrp.Service
	zds     *zds.Service

	dispatcher *actions.Dispatcher
	scheduler  *scheduling.CronScheduler
	installer  *installation.Installer
}

//newApplication creates storages from the configuration and wires the services
//the scheduler is created only for commands which run or report the cronjob
func newApplication(ctx context.Context, withScheduler bool) (*application, error) {
	metaStorage, err := meta.NewStorage(viper.Sub("meta"))
	if err != nil {
		return nil, err
	}

	objects, err := storages.NewObjectStore(ctx, viper.GetString("objects.postgres.dsn"))
	if err != nil {
		metaStorage.Close()
		return nil, err
	}

	app, err := wire(metaStorage, objects, withScheduler)
	if err != nil {
		objects.Close()
		metaStorage.Close()
		return nil, err
	}

	return app, nil
}

func wire(metaStorage meta.Storage, objects gateway.ObjectStore, withScheduler bool) (*application, error) {
	registry := gateway.NewRegistry()
	callsCache := caching.NewCallsCache(metaStorage)
	mapper := mapping.NewService()

	vrijbrpService := vrijbrp.NewService(registry, mapper, objects, adapters.NewHTTPCaller(nil, callsCache), synchronization.NewService(metaStorage))
	zdsService := zds.NewService(registry, mapper, objects)

	dispatcher, err := actions.NewDispatcher(viper.GetInt("server.actions.pool.size"))
	if err != nil {
		callsCache.Close()
		return nil, err
	}

	var scheduler *scheduling.CronScheduler
	if withScheduler {
		scheduler = scheduling.NewCronScheduler()
	}

	installer := installation.NewInstaller(installation.Config{
		Path:    viper.GetString("installation.path"),
		Actions: appconfig.ActionOverrides(),
		Crontab: viper.GetString("cron.default_listens"),
	}, registry, dispatcher, scheduler, actions.Handlers(vrijbrpService, zdsService))

	return &application{
		registry:    registry,
		metaStorage: metaStorage,
		objects:     objects,
		callsCache:  callsCache,
		vrijbrp:     vrijbrpService,
		zds:         zdsService,
		dispatcher:  dispatcher,
		scheduler:   scheduler,
		installer:   installer,
	}, nil
}

//install runs the installer, errors are logged: partially installed bundle is still usable
func (a *application) install() *installation.Report {
	report, err := a.installer.Install()
	if err != nil {
		logging.Errorf("Installation finished with errors: %v", err)
	}
	return report
}

func (a *application) Close() (multiErr error) {
	if a.scheduler != nil {
		if err := a.scheduler.Close(); err != nil {
			multiErr = multierror.Append(multiErr, err)
		}
	}
	if err := a.dispatcher.Close(); err != nil {
		multiErr = multierror.Append(multiErr, err)
	}
	if err := a.callsCache.Close(); err != nil {
		multiErr = multierror.Append(multiErr, err)
	}
	if err := a.objects.Close(); err != nil {
		multiErr = multierror.Append(multiErr, err)
	}
	if err := a.metaStorage.Close(); err != nil {
		multiErr = multierror.Append(multiErr, err)
	}
	return
}
