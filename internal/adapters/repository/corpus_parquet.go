package repository

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/okian/gaitprep/internal/domain/model"
)

const parquetWriterParallelism = 4

type corpusParquetRow struct {
	Subject string    `parquet:"name=subject, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Joint   string    `parquet:"name=joint, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Label   string    `parquet:"name=label, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Values  []float64 `parquet:"name=values, type=LIST, valuetype=DOUBLE"`
}

// WriteCorpus exports the flat corpus as one parquet row per stride.
func WriteCorpus(path string, corpus model.Corpus) error {
	if len(corpus.Data) != len(corpus.Labels) {
		return fmt.Errorf("write corpus %s: %d rows but %d labels", path, len(corpus.Data), len(corpus.Labels))
	}
	if err := os.MkdirAll(filepath.Dir(path), defaultDirMode); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}

	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	pw, err := writer.NewParquetWriter(fw, new(corpusParquetRow), parquetWriterParallelism)
	if err != nil {
		_ = fw.Close()
		return fmt.Errorf("parquet writer %s: %w", path, err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for i, values := range corpus.Data {
		l := corpus.Labels[i]
		row := corpusParquetRow{
			Subject: l.Subject,
			Joint:   string(l.Joint),
			Label:   string(l.Label),
			Values:  values,
		}
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			_ = fw.Close()
			return fmt.Errorf("write row %d to %s: %w", i, path, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return fw.Close()
}

// ReadCorpus loads a corpus written by WriteCorpus.
func ReadCorpus(path string) (model.Corpus, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return model.Corpus{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = fr.Close() }()

	pr, err := reader.NewParquetReader(fr, new(corpusParquetRow), parquetWriterParallelism)
	if err != nil {
		return model.Corpus{}, fmt.Errorf("parquet reader %s: %w", path, err)
	}
	defer pr.ReadStop()

	n := int(pr.GetNumRows())
	rows := make([]corpusParquetRow, n)
	if n > 0 {
		if err := pr.Read(&rows); err != nil {
			return model.Corpus{}, fmt.Errorf("read %s: %w", path, err)
		}
	}

	var corpus model.Corpus
	for _, r := range rows {
		corpus.Append(model.CorpusLabel{
			Subject: r.Subject,
			Joint:   model.Joint(r.Joint),
			Label:   model.FinalLabel(r.Label),
		}, r.Values)
	}
	return corpus, nil
}
