package source

import (
	"fmt"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/okian/gaitprep/internal/domain/model"
)

const parquetParallelism = 4

// kinematicsRow is one sample of all joints: Euler angles in degrees.
type kinematicsRow struct {
	RightKneeX  float64 `parquet:"name=right_knee_x, type=DOUBLE"`
	RightKneeY  float64 `parquet:"name=right_knee_y, type=DOUBLE"`
	RightKneeZ  float64 `parquet:"name=right_knee_z, type=DOUBLE"`
	LeftKneeX   float64 `parquet:"name=left_knee_x, type=DOUBLE"`
	LeftKneeY   float64 `parquet:"name=left_knee_y, type=DOUBLE"`
	LeftKneeZ   float64 `parquet:"name=left_knee_z, type=DOUBLE"`
	RightAnkleX float64 `parquet:"name=right_ankle_x, type=DOUBLE"`
	RightAnkleY float64 `parquet:"name=right_ankle_y, type=DOUBLE"`
	RightAnkleZ float64 `parquet:"name=right_ankle_z, type=DOUBLE"`
	LeftAnkleX  float64 `parquet:"name=left_ankle_x, type=DOUBLE"`
	LeftAnkleY  float64 `parquet:"name=left_ankle_y, type=DOUBLE"`
	LeftAnkleZ  float64 `parquet:"name=left_ankle_z, type=DOUBLE"`
	RightHipX   float64 `parquet:"name=right_hip_x, type=DOUBLE"`
	RightHipY   float64 `parquet:"name=right_hip_y, type=DOUBLE"`
	RightHipZ   float64 `parquet:"name=right_hip_z, type=DOUBLE"`
	LeftHipX    float64 `parquet:"name=left_hip_x, type=DOUBLE"`
	LeftHipY    float64 `parquet:"name=left_hip_y, type=DOUBLE"`
	LeftHipZ    float64 `parquet:"name=left_hip_z, type=DOUBLE"`
}

// fields maps each joint onto its three columns.
func (r *kinematicsRow) fields() map[model.Joint][3]*float64 {
	return map[model.Joint][3]*float64{
		model.RightKnee:  {&r.RightKneeX, &r.RightKneeY, &r.RightKneeZ},
		model.LeftKnee:   {&r.LeftKneeX, &r.LeftKneeY, &r.LeftKneeZ},
		model.RightAnkle: {&r.RightAnkleX, &r.RightAnkleY, &r.RightAnkleZ},
		model.LeftAnkle:  {&r.LeftAnkleX, &r.LeftAnkleY, &r.LeftAnkleZ},
		model.RightHip:   {&r.RightHipX, &r.RightHipY, &r.RightHipZ},
		model.LeftHip:    {&r.LeftHipX, &r.LeftHipY, &r.LeftHipZ},
	}
}

func readKinematics(path string) (map[model.Joint]model.AngleSeries, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = fr.Close() }()

	pr, err := reader.NewParquetReader(fr, new(kinematicsRow), parquetParallelism)
	if err != nil {
		return nil, fmt.Errorf("%w: parquet reader %s: %w", ErrMalformedTrial, path, err)
	}
	defer pr.ReadStop()

	n := int(pr.GetNumRows())
	rows := make([]kinematicsRow, n)
	if n > 0 {
		if err := pr.Read(&rows); err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", ErrMalformedTrial, path, err)
		}
	}

	angles := make(map[model.Joint]model.AngleSeries, len(model.Joints))
	for _, j := range model.Joints {
		angles[j] = make(model.AngleSeries, n)
	}
	for i := range rows {
		for j, cols := range rows[i].fields() {
			angles[j][i] = [3]float64{*cols[0], *cols[1], *cols[2]}
		}
	}
	return angles, nil
}

func writeKinematics(path string, angles map[model.Joint]model.AngleSeries) error {
	n := -1
	for _, j := range model.Joints {
		s, ok := angles[j]
		if !ok {
			return fmt.Errorf("%w: missing joint %s", ErrMalformedTrial, j)
		}
		if n >= 0 && len(s) != n {
			return fmt.Errorf("%w: joint %s has %d samples, want %d", ErrMalformedTrial, j, len(s), n)
		}
		n = len(s)
	}

	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	pw, err := writer.NewParquetWriter(fw, new(kinematicsRow), parquetParallelism)
	if err != nil {
		_ = fw.Close()
		return fmt.Errorf("parquet writer %s: %w", path, err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for i := 0; i < n; i++ {
		var row kinematicsRow
		for j, cols := range row.fields() {
			v := angles[j][i]
			*cols[0], *cols[1], *cols[2] = v[0], v[1], v[2]
		}
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			_ = fw.Close()
			return fmt.Errorf("write sample %d to %s: %w", i, path, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return fw.Close()
}
