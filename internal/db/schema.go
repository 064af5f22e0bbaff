package db

// schemaSQL defines the episode table. The %d placeholder is the HNSW
// index dimension, which must match the embedding model.
const schemaSQL = `
    DEFINE TABLE IF NOT EXISTS episode SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS doctor_id ON episode TYPE string;
    DEFINE FIELD IF NOT EXISTS patient_ref ON episode TYPE string;
    DEFINE FIELD IF NOT EXISTS patient_name ON episode TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS session_id ON episode TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS timestamp ON episode TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS summary ON episode TYPE string;
    DEFINE FIELD IF NOT EXISTS query ON episode TYPE string;
    DEFINE FIELD IF NOT EXISTS response ON episode TYPE string;
    DEFINE FIELD IF NOT EXISTS tools_used ON episode TYPE array<string> DEFAULT [];
    DEFINE FIELD IF NOT EXISTS outcome ON episode TYPE string DEFAULT 'none'
        ASSERT $value IN ['accepted', 'rejected', 'modified', 'none'];
    DEFINE FIELD IF NOT EXISTS embedding ON episode TYPE array<float>;
    DEFINE FIELD IF NOT EXISTS tags ON episode TYPE array<string> DEFAULT [];
    DEFINE FIELD IF NOT EXISTS confidence ON episode TYPE float DEFAULT 0.0;

    DEFINE INDEX IF NOT EXISTS episode_doctor ON episode FIELDS doctor_id;
    DEFINE INDEX IF NOT EXISTS episode_patient ON episode FIELDS patient_ref;
    DEFINE INDEX IF NOT EXISTS episode_timestamp ON episode FIELDS timestamp;
    DEFINE INDEX IF NOT EXISTS episode_embedding ON episode FIELDS embedding HNSW DIMENSION %d DIST COSINE TYPE F32;
`
