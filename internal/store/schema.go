package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS forecasts (
    id                   TEXT PRIMARY KEY,
    created_at           TEXT NOT NULL,
    source               TEXT NOT NULL,
    model                TEXT NOT NULL,
    seed                 INTEGER,
    row_count            INTEGER NOT NULL,
    predicted_units      INTEGER NOT NULL,
    confidence           TEXT NOT NULL,
    sales_trend          TEXT NOT NULL,
    peak_period          TEXT NOT NULL,
    accuracy             REAL NOT NULL,
    f1_score             REAL NOT NULL,
    mae                  INTEGER NOT NULL,
    rmse                 INTEGER NOT NULL,
    r_squared            REAL NOT NULL,
    result_json          TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS forecast_points (
    forecast_id          TEXT NOT NULL REFERENCES forecasts(id) ON DELETE CASCADE,
    idx                  INTEGER NOT NULL,
    period               TEXT NOT NULL,
    predicted            INTEGER NOT NULL,
    PRIMARY KEY (forecast_id, idx)
);

CREATE TABLE IF NOT EXISTS file_tracker (
    file_path            TEXT PRIMARY KEY,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL,
    forecast_id          TEXT
);

CREATE INDEX IF NOT EXISTS idx_forecasts_created ON forecasts(created_at);
CREATE INDEX IF NOT EXISTS idx_forecasts_model ON forecasts(model);
CREATE INDEX IF NOT EXISTS idx_forecasts_source ON forecasts(source);
`
