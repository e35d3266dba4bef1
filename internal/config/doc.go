// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// An optional .env file is loaded first so local runs can keep the CoinGecko key
// out of the YAML file. COINGECKO_API_KEY and DATABASE_URL override the file.
package config
