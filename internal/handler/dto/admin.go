package dto

// SettingsResponse lists non-secret runtime settings.
type SettingsResponse struct {
	Environment           string  `json:"environment"`
	TokenTTL              string  `json:"tokenTtl"`
	CookieName            string  `json:"cookieName"`
	CookieSecure          bool    `json:"cookieSecure"`
	LoginRateLimitEnabled bool    `json:"loginRateLimitEnabled"`
	LoginRateLimitRPS     float64 `json:"loginRateLimitRps"`
	LoginRateLimitBurst   int     `json:"loginRateLimitBurst"`
	RedisConfigured       bool    `json:"redisConfigured"`
}
