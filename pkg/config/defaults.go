package config

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultLoggingFormat        = "text"
	DefaultLoggingLevel         = "INFO"
	DefaultLoggingOutput        = "="
	DefaultLoggingFileMaxSizeMB = 100
	DefaultLoggingFilesKeep     = 10

	DefaultHTTPConnectTimeout      = 10 * time.Second
	DefaultHTTPTimeout             = 30 * time.Second
	DefaultHTTPMaxIdleConnsPerHost = 10
	// DefaultHTTPUserAgent is the browser identity the authorize endpoint expects.
	DefaultHTTPUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/100.0.4896.127 Safari/537.36"

	DefaultSessionEndpoint    = "https://auth.aliyundrive.com/v2/oauth/authorize?client_id=25dzX3vbYqktVxyX&redirect_uri=https%3A%2F%2Fwww.aliyundrive.com%2Fsign%2Fcallback&response_type=code&login_type=custom&state=%7B%22origin%22%3A%22https%3A%2F%2Fwww.aliyundrive.com%22%7D"
	DefaultGenerateEndpoint   = "https://passport.aliyundrive.com/newlogin/qrcode/generate.do?appName=aliyun_drive&fromSite=52&appEntrance=web&lang=zh_CN"
	DefaultQueryEndpoint      = "https://passport.aliyundrive.com/newlogin/qrcode/query.do?appName=aliyun_drive&fromSite=52&_bx-v=2.0.31"
	DefaultTokenLoginEndpoint = "https://auth.aliyundrive.com/v2/oauth/token_login"
	DefaultWebTokenEndpoint   = "https://api.aliyundrive.com/token/get"

	DefaultPollInterval           = 2 * time.Second
	DefaultPollTimeout            = 3 * time.Minute
	DefaultPollMaxTransientErrors = 0 // no cap; the timeout alone bounds transient retries

	DefaultLoginType = "normal"
	DefaultDeviceID  = "aliyundrive"

	DefaultMetricsListenAddress = ""
)

// Configuration keys
const (
	LoggingFormatKey        = "logging.format"
	LoggingLevelKey         = "logging.level"
	LoggingOutputKey        = "logging.output"
	LoggingFileMaxSizeMBKey = "logging.file_max_size_mb"
	LoggingFilesKeepKey     = "logging.files_keep"

	HTTPConnectTimeoutKey      = "http.connect_timeout"
	HTTPTimeoutKey             = "http.timeout"
	HTTPUserAgentKey           = "http.user_agent"
	HTTPMaxIdleConnsPerHostKey = "http.max_idle_conns_per_host"

	EndpointsSessionKey    = "endpoints.session"
	EndpointsGenerateKey   = "endpoints.generate"
	EndpointsQueryKey      = "endpoints.query"
	EndpointsTokenLoginKey = "endpoints.token_login"
	EndpointsWebTokenKey   = "endpoints.web_token"

	PollIntervalKey           = "poll.interval"
	PollTimeoutKey            = "poll.timeout"
	PollMaxTransientErrorsKey = "poll.max_transient_errors"

	LoginTypeKey     = "login.login_type"
	LoginDeviceIDKey = "login.device_id"

	MetricsListenAddressKey = "metrics.listen_address"
)

func setDefaults() {
	viper.SetDefault(LoggingFormatKey, DefaultLoggingFormat)
	viper.SetDefault(LoggingLevelKey, DefaultLoggingLevel)
	viper.SetDefault(LoggingOutputKey, DefaultLoggingOutput)
	viper.SetDefault(LoggingFileMaxSizeMBKey, DefaultLoggingFileMaxSizeMB)
	viper.SetDefault(LoggingFilesKeepKey, DefaultLoggingFilesKeep)

	viper.SetDefault(HTTPConnectTimeoutKey, DefaultHTTPConnectTimeout)
	viper.SetDefault(HTTPTimeoutKey, DefaultHTTPTimeout)
	viper.SetDefault(HTTPUserAgentKey, DefaultHTTPUserAgent)
	viper.SetDefault(HTTPMaxIdleConnsPerHostKey, DefaultHTTPMaxIdleConnsPerHost)

	viper.SetDefault(EndpointsSessionKey, DefaultSessionEndpoint)
	viper.SetDefault(EndpointsGenerateKey, DefaultGenerateEndpoint)
	viper.SetDefault(EndpointsQueryKey, DefaultQueryEndpoint)
	viper.SetDefault(EndpointsTokenLoginKey, DefaultTokenLoginEndpoint)
	viper.SetDefault(EndpointsWebTokenKey, DefaultWebTokenEndpoint)

	viper.SetDefault(PollIntervalKey, DefaultPollInterval)
	viper.SetDefault(PollTimeoutKey, DefaultPollTimeout)
	viper.SetDefault(PollMaxTransientErrorsKey, DefaultPollMaxTransientErrors)

	viper.SetDefault(LoginTypeKey, DefaultLoginType)
	viper.SetDefault(LoginDeviceIDKey, DefaultDeviceID)

	viper.SetDefault(MetricsListenAddressKey, DefaultMetricsListenAddress)
}
