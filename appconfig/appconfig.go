package appconfig

import (
	"fmt"
	"io"
	"os"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/logging"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/metrics"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

type AppConfig struct {
	ServerName string
	Authority  string
	AdminToken string

	closeMe []io.Closer
}

var Instance *AppConfig

func setDefaultParams() {
	viper.SetDefault("server.name", "vrijbrp-gateway")
	viper.SetDefault("server.port", "8001")
	viper.SetDefault("server.actions.pool.size", 10)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.rotation_min", 1440)
	viper.SetDefault("meta.calls_limit", 100)
	viper.SetDefault("cron.default_listens", "*/5 * * * *")
	viper.SetDefault("metrics.prometheus.enabled", false)
}

//Init sets the defaults, the global logger and metrics and creates Instance
func Init() error {
	setDefaultParams()

	serverName := viper.GetString("server.name")
	globalLoggerConfig := logging.Config{
		FileName:    serverName + "-main",
		FileDir:     viper.GetString("log.path"),
		RotationMin: viper.GetInt64("log.rotation_min"),
		MaxBackups:  viper.GetInt("log.max_backups")}

	//Global logger writes logs
	//
	//   configured file logger            no file logger configured
	//     /             \                            |
	// os.Stdout      FileWriter                  os.Stdout
	var appConfig AppConfig
	if globalLoggerConfig.FileDir != "" {
		if err := logging.EnsureDir(globalLoggerConfig.FileDir); err != nil {
			return fmt.Errorf("Error creating log dir %s: %v", globalLoggerConfig.FileDir, err)
		}
		if !logging.IsDirWritable(globalLoggerConfig.FileDir) {
			return fmt.Errorf("Log dir %s isn't writable", globalLoggerConfig.FileDir)
		}

		fileWriter := logging.NewRollingWriter(globalLoggerConfig)
		logging.GlobalLogsWriter = logging.Dual{
			FileWriter: fileWriter,
			Stdout:     os.Stdout,
		}
		appConfig.ScheduleClosing(fileWriter)
	} else {
		logging.GlobalLogsWriter = os.Stdout
	}
	if err := logging.InitGlobalLogger(logging.GlobalLogsWriter, viper.GetString("log.level")); err != nil {
		return err
	}

	logging.Info("*** Creating new AppConfig ***")
	logging.Info("Server Name:", serverName)
	publicURL := viper.GetString("server.public_url")
	if publicURL == "" {
		logging.Warn("Server public url: will be taken from Host header")
	} else {
		logging.Info("Server public url:", publicURL)
	}

	port := viper.GetString("port")
	if port == "" {
		port = viper.GetString("server.port")
	}
	appConfig.ServerName = serverName
	appConfig.Authority = "0.0.0.0:" + port
	appConfig.AdminToken = viper.GetString("server.admin_token")
	if appConfig.AdminToken == "" {
		logging.Warn("server.admin_token isn't configured: admin API is disabled")
	}

	metrics.Init(viper.GetBool("metrics.prometheus.enabled"))

	Instance = &appConfig
	return nil
}

//ActionOverrides returns actions.<name>.* configuration
func ActionOverrides() map[string]map[string]interface{} {
	result := map[string]map[string]interface{}{}
	for name, value := range viper.GetStringMap("actions") {
		if config := cast.ToStringMap(value); len(config) > 0 {
			result[name] = config
		}
	}
	return result
}

func (a *AppConfig) ScheduleClosing(c io.Closer) {
	a.closeMe = append(a.closeMe, c)
}

func (a *AppConfig) Close() {
	for _, cl := range a.closeMe {
		if err := cl.Close(); err != nil {
			logging.Error(err)
		}
	}
}
