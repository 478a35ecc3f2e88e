package approval

const schema = `
CREATE TABLE IF NOT EXISTS classpath_approvals (
    hash TEXT PRIMARY KEY,
    url TEXT NOT NULL,
    state TEXT NOT NULL DEFAULT 'pending',
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    approved_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_classpath_approvals_state ON classpath_approvals(state);
`
