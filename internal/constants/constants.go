package constants

const USER_AGENT = "fetchonce/0.1.0 (+https://github.com/Amund211/fetchonce)"

const DEFAULT_ITEMS_BASE_URL = "https://challenges.qluv.io/items/"

const DEFAULT_FETCH_CONCURRENCY = 5
