// Package domain models current-weather lookups for a line-oriented chat bot.
//
// # Data Source
//
// Readings come from the OpenWeatherMap current-weather endpoint
// (https://openweathermap.org/current), requested with units=metric so
// temperatures arrive in Celsius and wind speed in metres per second.
// The fields the bot relies on are:
//
//	main.temp        temperature, °C
//	main.humidity    relative humidity, %
//	weather[0].main  short sky condition ("Clear", "Rain", "Clouds")
//	wind.speed       wind speed, m/s
//	sys.sunrise      sunrise, Unix seconds UTC
//	sys.sunset       sunset, Unix seconds UTC
//
// A response missing any of these is treated as malformed.
//
// # Line Framing
//
// IRC-style transports frame one message per line (RFC 1459 §2.3.1), so a
// message may not embed CR or LF. [FormatReading] always returns one line
// per message and strips framing characters from text supplied by the
// remote service. See [SafeLine].
//
// # Credentials
//
// The API key is optional from the bot's point of view. A [Credential] that
// is absent is still sent (as an empty appid) and the remote service decides
// whether to reject it.
package domain
