// Package domain models sunspot observations and the Notion page they are
// archived into.
//
// # Observation Flow
//
// A submission carries a photo of the sun, the observer's name, a free-text
// memo and an optional city. The service counts sunspots with a pretrained
// detection model, resolves the city (IP-derived when the observer left it
// blank), looks up the current weather, hosts both the original and the
// annotated photo on a public image store, and finally archives everything as
// one page in a Notion database.
//
// # Template Slots
//
// Archive pages are created from a database template whose heading_2 blocks
// double as image slots:
//
//	## 🌞 내가 찍은 태양 사진      <- original photo slot
//	## 🤖 AI가 분석한 태양 사진    <- detection result slot
//
// A slot is located by substring match against the first rich-text run of
// each heading_2, scanning the page's direct children in order. The first
// match wins. A heading without text runs never matches. Images are appended
// as children of the matched heading; the heading itself is never modified.
//
// # Public URLs
//
// Notion page IDs are dashed UUIDs. The public URL is the ID with every dash
// removed, appended to https://www.notion.so/. See [PublicURL].
//
// # Weather
//
// Weather descriptions are requested in Korean. A weather emoji is appended
// based on keywords in the description:
//
//	맑 (clear) → ☀️   구름 (cloud) → ☁️   비 (rain) → 🌧️   눈 (snow) → ❄️   otherwise 🌈
//
// A failed lookup yields an unavailable [WeatherReport] rather than zero
// values, so callers can tell "0°C" from "unknown".
package domain
